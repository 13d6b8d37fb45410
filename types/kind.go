package types

type Kind uint8

const (
	KindUInt Kind = iota
	KindEnum
	KindStruct
	KindArray
	KindNamed
)

var kindNames = [...]string{
	KindUInt:   "uint",
	KindEnum:   "enum",
	KindStruct: "struct",
	KindArray:  "array",
	KindNamed:  "named",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether values of this kind are a single integer.
func (k Kind) IsScalar() bool {
	return k == KindUInt || k == KindEnum
}
