package ftype

// AssignableFrom reports whether a value of type src can be used where dst
// is expected. Assignability is structural, with two widenings: an
// all-equal federated src fits a non-all-equal dst of the same member type
// and placement, and a fully known tensor shape fits a dst with unknown
// dimensions.
func AssignableFrom(dst, src Type) bool {
	if dst == nil || src == nil {
		return dst == nil && src == nil
	}
	switch d := dst.(type) {
	case *TensorType:
		s, ok := src.(*TensorType)
		if !ok || d.DType != s.DType || len(d.Shape) != len(s.Shape) {
			return false
		}
		for i := range d.Shape {
			if d.Shape[i] < 0 {
				continue
			}
			if d.Shape[i] != s.Shape[i] {
				return false
			}
		}
		return true
	case *StructType:
		s, ok := src.(*StructType)
		if !ok || len(d.Fields) != len(s.Fields) {
			return false
		}
		for i := range d.Fields {
			if d.Fields[i].Name != s.Fields[i].Name {
				return false
			}
			if !AssignableFrom(d.Fields[i].Type, s.Fields[i].Type) {
				return false
			}
		}
		return true
	case *SequenceType:
		s, ok := src.(*SequenceType)
		if !ok {
			return false
		}
		return AssignableFrom(d.Elem, s.Elem)
	case *FederatedType:
		s, ok := src.(*FederatedType)
		if !ok || d.Placement != s.Placement {
			return false
		}
		if d.AllEqual && !s.AllEqual {
			return false
		}
		return AssignableFrom(d.Member, s.Member)
	case *FunctionType:
		s, ok := src.(*FunctionType)
		if !ok {
			return false
		}
		return AssignableFrom(d.Param, s.Param) && AssignableFrom(d.Result, s.Result)
	default:
		return false
	}
}

// Equal reports structural type identity, with no widening.
func Equal(a, b Type) bool {
	return AssignableFrom(a, b) && AssignableFrom(b, a)
}
