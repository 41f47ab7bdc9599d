package tenantschema

// CurrentVersion is the schema shape produced by Ensure. Bump it whenever a
// table or column patch is added below.
const CurrentVersion = 3

type tableDDL struct {
	name string
	ddl  string
}

// tables is ordered so that every referenced table is created first
var tables = []tableDDL{
	{"sucursales", `CREATE TABLE IF NOT EXISTS sucursales (
  id BIGINT NOT NULL AUTO_INCREMENT,
  nombre VARCHAR(150) NOT NULL,
  direccion VARCHAR(255) NOT NULL DEFAULT '',
  telefono VARCHAR(30) NOT NULL DEFAULT '',
  ciudad VARCHAR(100) NOT NULL DEFAULT '',
  activa TINYINT(1) NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"terceros", `CREATE TABLE IF NOT EXISTS terceros (
  id BIGINT NOT NULL AUTO_INCREMENT,
  tipo_documento VARCHAR(10) NOT NULL DEFAULT 'CC',
  numero_documento VARCHAR(30) NOT NULL,
  nombre VARCHAR(200) NOT NULL,
  tipo VARCHAR(20) NOT NULL DEFAULT 'cliente',
  email VARCHAR(150) NOT NULL DEFAULT '',
  telefono VARCHAR(30) NOT NULL DEFAULT '',
  direccion VARCHAR(255) NOT NULL DEFAULT '',
  ciudad VARCHAR(100) NOT NULL DEFAULT '',
  activo TINYINT(1) NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uk_terceros_documento (tipo_documento, numero_documento)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"usuarios", `CREATE TABLE IF NOT EXISTS usuarios (
  id BIGINT NOT NULL AUTO_INCREMENT,
  username VARCHAR(60) NOT NULL,
  password_hash VARCHAR(100) NOT NULL,
  nombre VARCHAR(150) NOT NULL DEFAULT '',
  email VARCHAR(150) NOT NULL DEFAULT '',
  rol VARCHAR(30) NOT NULL DEFAULT 'vendedor',
  sucursal_id BIGINT NULL,
  activo TINYINT(1) NOT NULL DEFAULT 1,
  ultimo_acceso DATETIME NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uk_usuarios_username (username)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"documentos", `CREATE TABLE IF NOT EXISTS documentos (
  id BIGINT NOT NULL AUTO_INCREMENT,
  sucursal_id BIGINT NULL,
  tipo VARCHAR(20) NOT NULL,
  nombre VARCHAR(100) NOT NULL,
  prefijo VARCHAR(10) NOT NULL DEFAULT '',
  consecutivo_actual BIGINT NOT NULL DEFAULT 1,
  resolucion VARCHAR(255) NOT NULL DEFAULT '',
  activo TINYINT(1) NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  CONSTRAINT fk_documentos_sucursal FOREIGN KEY (sucursal_id) REFERENCES sucursales (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"productos", `CREATE TABLE IF NOT EXISTS productos (
  id BIGINT NOT NULL AUTO_INCREMENT,
  codigo VARCHAR(50) NOT NULL,
  codigo_barras VARCHAR(64) NOT NULL DEFAULT '',
  nombre VARCHAR(200) NOT NULL,
  descripcion VARCHAR(1000) NOT NULL DEFAULT '',
  categoria VARCHAR(100) NOT NULL DEFAULT '',
  unidad VARCHAR(20) NOT NULL DEFAULT 'UND',
  precio_compra DECIMAL(18,2) NOT NULL DEFAULT 0,
  precio_venta DECIMAL(18,2) NOT NULL DEFAULT 0,
  iva DECIMAL(5,2) NOT NULL DEFAULT 0,
  stock DECIMAL(18,4) NOT NULL DEFAULT 0,
  stock_minimo DECIMAL(18,4) NOT NULL DEFAULT 0,
  imagen_url VARCHAR(500) NOT NULL DEFAULT '',
  visible_tienda TINYINT(1) NOT NULL DEFAULT 0,
  activo TINYINT(1) NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uk_productos_codigo (codigo)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"compras", `CREATE TABLE IF NOT EXISTS compras (
  id BIGINT NOT NULL AUTO_INCREMENT,
  numero VARCHAR(40) NOT NULL DEFAULT '',
  documento_id BIGINT NULL,
  tercero_id BIGINT NOT NULL,
  sucursal_id BIGINT NULL,
  usuario_id BIGINT NOT NULL,
  fecha DATETIME NOT NULL,
  subtotal DECIMAL(18,2) NOT NULL DEFAULT 0,
  iva DECIMAL(18,2) NOT NULL DEFAULT 0,
  total DECIMAL(18,2) NOT NULL DEFAULT 0,
  estado VARCHAR(20) NOT NULL DEFAULT 'recibida',
  observaciones VARCHAR(500) NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  CONSTRAINT fk_compras_tercero FOREIGN KEY (tercero_id) REFERENCES terceros (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"compras_detalle", `CREATE TABLE IF NOT EXISTS compras_detalle (
  id BIGINT NOT NULL AUTO_INCREMENT,
  compra_id BIGINT NOT NULL,
  producto_id BIGINT NOT NULL,
  cantidad DECIMAL(18,4) NOT NULL,
  costo_unitario DECIMAL(18,2) NOT NULL,
  iva_porcentaje DECIMAL(5,2) NOT NULL DEFAULT 0,
  subtotal DECIMAL(18,2) NOT NULL DEFAULT 0,
  iva DECIMAL(18,2) NOT NULL DEFAULT 0,
  total DECIMAL(18,2) NOT NULL DEFAULT 0,
  PRIMARY KEY (id),
  CONSTRAINT fk_compras_detalle_compra FOREIGN KEY (compra_id) REFERENCES compras (id) ON DELETE CASCADE,
  CONSTRAINT fk_compras_detalle_producto FOREIGN KEY (producto_id) REFERENCES productos (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"facturas", `CREATE TABLE IF NOT EXISTS facturas (
  id BIGINT NOT NULL AUTO_INCREMENT,
  numero VARCHAR(40) NOT NULL,
  documento_id BIGINT NOT NULL,
  tercero_id BIGINT NOT NULL,
  sucursal_id BIGINT NULL,
  usuario_id BIGINT NOT NULL,
  fecha DATETIME NOT NULL,
  subtotal DECIMAL(18,2) NOT NULL DEFAULT 0,
  iva DECIMAL(18,2) NOT NULL DEFAULT 0,
  total DECIMAL(18,2) NOT NULL DEFAULT 0,
  metodo_pago VARCHAR(20) NOT NULL DEFAULT 'efectivo',
  estado VARCHAR(20) NOT NULL DEFAULT 'emitida',
  observaciones VARCHAR(500) NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uk_facturas_numero (numero),
  CONSTRAINT fk_facturas_tercero FOREIGN KEY (tercero_id) REFERENCES terceros (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"factura_detalle", `CREATE TABLE IF NOT EXISTS factura_detalle (
  id BIGINT NOT NULL AUTO_INCREMENT,
  factura_id BIGINT NOT NULL,
  producto_id BIGINT NOT NULL,
  cantidad DECIMAL(18,4) NOT NULL,
  precio_unitario DECIMAL(18,2) NOT NULL,
  iva_porcentaje DECIMAL(5,2) NOT NULL DEFAULT 0,
  subtotal DECIMAL(18,2) NOT NULL DEFAULT 0,
  iva DECIMAL(18,2) NOT NULL DEFAULT 0,
  total DECIMAL(18,2) NOT NULL DEFAULT 0,
  PRIMARY KEY (id),
  CONSTRAINT fk_factura_detalle_factura FOREIGN KEY (factura_id) REFERENCES facturas (id) ON DELETE CASCADE,
  CONSTRAINT fk_factura_detalle_producto FOREIGN KEY (producto_id) REFERENCES productos (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"recibos_caja", `CREATE TABLE IF NOT EXISTS recibos_caja (
  id BIGINT NOT NULL AUTO_INCREMENT,
  numero VARCHAR(40) NOT NULL,
  tercero_id BIGINT NULL,
  factura_id BIGINT NULL,
  usuario_id BIGINT NOT NULL,
  fecha DATETIME NOT NULL,
  valor DECIMAL(18,2) NOT NULL,
  metodo_pago VARCHAR(20) NOT NULL DEFAULT 'efectivo',
  concepto VARCHAR(255) NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  CONSTRAINT fk_recibos_tercero FOREIGN KEY (tercero_id) REFERENCES terceros (id),
  CONSTRAINT fk_recibos_factura FOREIGN KEY (factura_id) REFERENCES facturas (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"inventario_sucursales", `CREATE TABLE IF NOT EXISTS inventario_sucursales (
  id BIGINT NOT NULL AUTO_INCREMENT,
  sucursal_id BIGINT NOT NULL,
  producto_id BIGINT NOT NULL,
  cantidad DECIMAL(18,4) NOT NULL DEFAULT 0,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uk_inventario_sucursal_producto (sucursal_id, producto_id),
  CONSTRAINT fk_inventario_sucursal FOREIGN KEY (sucursal_id) REFERENCES sucursales (id),
  CONSTRAINT fk_inventario_producto FOREIGN KEY (producto_id) REFERENCES productos (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"movimientos_inventario", `CREATE TABLE IF NOT EXISTS movimientos_inventario (
  id BIGINT NOT NULL AUTO_INCREMENT,
  producto_id BIGINT NOT NULL,
  sucursal_id BIGINT NULL,
  tipo VARCHAR(20) NOT NULL,
  cantidad DECIMAL(18,4) NOT NULL,
  origen VARCHAR(20) NOT NULL DEFAULT 'manual',
  referencia_id BIGINT NULL,
  usuario_id BIGINT NOT NULL,
  observaciones VARCHAR(500) NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  KEY idx_movimientos_producto (producto_id),
  CONSTRAINT fk_movimientos_producto FOREIGN KEY (producto_id) REFERENCES productos (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},

	{"schema_version", `CREATE TABLE IF NOT EXISTS schema_version (
  id TINYINT NOT NULL,
  version INT NOT NULL,
  applied_at DATETIME NOT NULL,
  PRIMARY KEY (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

type columnPatch struct {
	column     string
	definition string
}

type tablePatches struct {
	table   string
	columns []columnPatch
}

// patches lists columns introduced after the first tenants were
// provisioned. Each definition must match the CREATE TABLE above.
var patches = []tablePatches{
	{"productos", []columnPatch{
		{"codigo_barras", "VARCHAR(64) NOT NULL DEFAULT ''"},
		{"categoria", "VARCHAR(100) NOT NULL DEFAULT ''"},
		{"iva", "DECIMAL(5,2) NOT NULL DEFAULT 0"},
		{"stock_minimo", "DECIMAL(18,4) NOT NULL DEFAULT 0"},
		{"imagen_url", "VARCHAR(500) NOT NULL DEFAULT ''"},
		{"visible_tienda", "TINYINT(1) NOT NULL DEFAULT 0"},
	}},
	{"compras", []columnPatch{
		{"numero", "VARCHAR(40) NOT NULL DEFAULT ''"},
		{"documento_id", "BIGINT NULL"},
		{"sucursal_id", "BIGINT NULL"},
		{"estado", "VARCHAR(20) NOT NULL DEFAULT 'recibida'"},
		{"observaciones", "VARCHAR(500) NOT NULL DEFAULT ''"},
	}},
	{"facturas", []columnPatch{
		{"sucursal_id", "BIGINT NULL"},
		{"metodo_pago", "VARCHAR(20) NOT NULL DEFAULT 'efectivo'"},
		{"estado", "VARCHAR(20) NOT NULL DEFAULT 'emitida'"},
		{"observaciones", "VARCHAR(500) NOT NULL DEFAULT ''"},
	}},
}
