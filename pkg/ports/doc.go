/*
Package ports defines the driven ports (interfaces) of the rule base.

These interfaces decouple the decoding core from storage, allowing the engine
to work with in-memory fixtures, SQLite, Redis or YAML documents alike.

# Key Interfaces

  - TreeReader: Synchronous read view the decoder walks (roots, children, options).
  - RuleStore: CRUD persistence for rules and nodes.
  - DistributedLocker: Serializes tree mutations across replicas.
*/
package ports
