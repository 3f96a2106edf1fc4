// Package wire defines the byte encoding of every value the dkg protocol
// transmits or persists.
//
// Messages are plain structs marshalled with go.dedis.ch/protobuf, which
// derives the protobuf schema from the struct fields by reflection. Group
// elements travel as their canonical encodings from package group, so
// scalars and points keep their exact byte values end to end.
package wire
