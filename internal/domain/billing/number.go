package billing

import "fmt"

// FiscalNumberWidth ancho del correlativo impreso en la factura.
const FiscalNumberWidth = 8

// FiscalNumber arma el número de documento: <prefijo>-<correlativo con ceros a la izquierda>.
// Ej: FiscalNumber("000-001-01", 42) = "000-001-01-00000042".
func FiscalNumber(prefix string, id int64) string {
	if prefix == "" {
		return fmt.Sprintf("%0*d", FiscalNumberWidth, id)
	}
	return fmt.Sprintf("%s-%0*d", prefix, FiscalNumberWidth, id)
}
