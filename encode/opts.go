package encode

type EncodeOption func(*EncState)

func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) { es.Color = c.Color }
}

// EncodeTypes appends the value's type to the rendering.
func EncodeTypes(v bool) EncodeOption {
	return func(es *EncState) { es.types = v }
}
