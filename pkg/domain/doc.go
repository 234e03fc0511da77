/*
Package domain contains the core domain models of the rule base.

It defines encoding rules, the typed nodes that form each rule's tree, and the
segments a decode produces. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Rule: A named encoding scheme with an expected total code length.
  - Node: A typed tree element (STATIC, OPTION, FIXED, INPUT, SERIAL).
  - Segment: One labeled slice of a decoded code with its rendered meaning.
  - Pick: One step of a manually composed code.
*/
package domain
