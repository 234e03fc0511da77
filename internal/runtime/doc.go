/*
Package runtime is the decoding core.

It matches a code string against a forest of typed nodes: FormatValue renders
component-value shorthand, MatchNode matches one node against the front of a
code, DecodeChain walks one subtree depth first, and Decoder tries every root
until one consumes the code exactly. Compose runs the other direction.

Everything here is synchronous and side-effect free. The tree is read
through ports.TreeReader, normally a Snapshot built once per call.
*/
package runtime
