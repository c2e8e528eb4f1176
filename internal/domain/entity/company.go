package entity

// Company identidad del emisor impresa en el documento fiscal (razón social, RTN, contacto).
// Se construye desde la configuración; no se persiste.
type Company struct {
	Name      string
	TradeName string // nombre comercial, opcional
	RTN       string // Registro Tributario Nacional
	Address   string
	Phone     string
	Email     string
}
