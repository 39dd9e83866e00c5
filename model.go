package main

// Tag is a Hydrus tag as stored in the master dictionary.
type Tag struct {
	ID        int64
	Namespace string // "" for unnamespaced tags
	Subtag    string
}

// QualifiedName returns "namespace:subtag", or the bare subtag when the tag has no namespace.
func (t Tag) QualifiedName() string {
	return QualifiedName(t.Namespace, t.Subtag)
}

// QualifiedName joins a namespace and subtag the way Hydrus displays them.
func QualifiedName(namespace, subtag string) string {
	if namespace == "" {
		return subtag
	}
	return namespace + ":" + subtag
}

// CoOccurrence is one (target, partner) pair read from the mappings cache.
// Px and Py are the precomputed per-tag file counts; Pxy is the live count of
// files carrying both tags.
type CoOccurrence struct {
	X   Tag // target
	Y   Tag // partner
	Px  int64
	Py  int64
	Pxy int64
}

// ResultRow is one output row. Tags are flattened to qualified names; ids are dropped.
type ResultRow struct {
	X       string
	Y       string
	Px      int64
	Py      int64
	Pxy     int64
	CPxy    float64
	CPyx    float64
	MIxy    float64
	Metric1 float64
	Metric2 float64
}
