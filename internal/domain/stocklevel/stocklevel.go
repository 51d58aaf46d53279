package stocklevel

// Status clasificación del nivel de stock de un artículo.
// Los valores coinciden con las etiquetas que muestra la UI del operador.
type Status string

const (
	OutOfStock   Status = "Out of Stock"
	LowStock     Status = "Low Stock"
	LimitedStock Status = "Limited Stock"
	InStock      Status = "In Stock"
)

// LimitedCeiling techo de la banda "Limited Stock": cantidades por encima
// de este valor se consideran "In Stock". Constante de política de negocio.
const LimitedCeiling = 25

// DefaultLowThreshold umbral de stock bajo cuando el artículo no define uno propio.
const DefaultLowThreshold = 11

// Valid indica si s es una de las cuatro clasificaciones conocidas.
func (s Status) Valid() bool {
	switch s {
	case OutOfStock, LowStock, LimitedStock, InStock:
		return true
	}
	return false
}

// Classify calcula la clasificación de stock de un artículo a partir de su
// cantidad total y su umbral de stock bajo. Si manual no es nil, el override
// del personal gana siempre y se devuelve tal cual (ej. mercancía dañada aún
// no retirada). Función pura y total: no tiene efectos ni casos de error.
func Classify(totalQuantity, lowThreshold int, manual *Status) Status {
	if manual != nil {
		return *manual
	}
	// Un umbral 0 es válido y anula la banda "Low Stock"; solo un umbral
	// negativo (no configurado) cae al valor por defecto.
	if lowThreshold < 0 {
		lowThreshold = DefaultLowThreshold
	}
	switch {
	case totalQuantity <= 0:
		return OutOfStock
	case totalQuantity <= lowThreshold:
		return LowStock
	case totalQuantity <= LimitedCeiling:
		return LimitedStock
	}
	return InStock
}
