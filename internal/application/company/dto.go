package company

// BranchInput is the body of branch create and update requests
type BranchInput struct {
	Name    string `json:"nombre" binding:"required,min=1,max=150"`
	Address string `json:"direccion" binding:"max=255"`
	Phone   string `json:"telefono" binding:"max=30"`
	City    string `json:"ciudad" binding:"max=100"`
	Active  *bool  `json:"activa"`
}

// DocumentInput is the body of document create and update requests
type DocumentInput struct {
	BranchID      *int64 `json:"sucursal_id" binding:"omitempty,gt=0"`
	Kind          string `json:"tipo" binding:"required,oneof=factura compra recibo"`
	Name          string `json:"nombre" binding:"required,min=1,max=100"`
	Prefix        string `json:"prefijo" binding:"max=10"`
	CurrentNumber *int64 `json:"consecutivo_actual" binding:"omitempty,gte=1"`
	Resolution    string `json:"resolucion" binding:"max=255"`
	Active        *bool  `json:"activo"`
}
