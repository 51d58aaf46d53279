package stocklevel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clawops/clawfleet-api/internal/domain/stocklevel"
)

func TestClassify_PorCantidad(t *testing.T) {
	cases := []struct {
		name      string
		qty       int
		threshold int
		want      stocklevel.Status
	}{
		{"cero es agotado", 0, 11, stocklevel.OutOfStock},
		{"negativo es agotado", -3, 11, stocklevel.OutOfStock},
		{"uno es stock bajo", 1, 11, stocklevel.LowStock},
		{"umbral exacto es stock bajo", 11, 11, stocklevel.LowStock},
		{"sobre el umbral es limitado", 12, 11, stocklevel.LimitedStock},
		{"techo limitado exacto", 25, 11, stocklevel.LimitedStock},
		{"sobre el techo es en stock", 26, 11, stocklevel.InStock},
		{"umbral propio del artículo", 5, 3, stocklevel.LimitedStock},
		{"umbral cero anula la banda baja", 1, 0, stocklevel.LimitedStock},
		{"umbral negativo usa el por defecto", 5, -1, stocklevel.LowStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stocklevel.Classify(tc.qty, tc.threshold, nil))
		})
	}
}

func TestClassify_OverrideManualGanaSiempre(t *testing.T) {
	// Cantidad 50 con override "Out of Stock": el personal manda (ej.
	// mercancía dañada aún no retirada del sistema).
	manual := stocklevel.OutOfStock
	assert.Equal(t, stocklevel.OutOfStock, stocklevel.Classify(50, 11, &manual))

	manual = stocklevel.InStock
	assert.Equal(t, stocklevel.InStock, stocklevel.Classify(0, 11, &manual))
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, stocklevel.LowStock.Valid())
	assert.False(t, stocklevel.Status("Sorta Stocked").Valid())
}
