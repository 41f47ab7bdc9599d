package partner

// PartnerInput is the body of tercero create and update requests
type PartnerInput struct {
	DocumentType   string `json:"tipo_documento" binding:"required,oneof=NIT CC CE PAS TI"`
	DocumentNumber string `json:"numero_documento" binding:"required,min=1,max=30"`
	Name           string `json:"nombre" binding:"required,min=1,max=200"`
	Kind           string `json:"tipo" binding:"required,oneof=cliente proveedor ambos"`
	Email          string `json:"email" binding:"omitempty,email,max=150"`
	Phone          string `json:"telefono" binding:"max=30"`
	Address        string `json:"direccion" binding:"max=255"`
	City           string `json:"ciudad" binding:"max=100"`
	Active         *bool  `json:"activo"`
}
