package ingest

// ContractSet groups the three dataset contracts of one deployment. Exact
// header names are configuration; these defaults match the upstream export
// jobs.
type ContractSet struct {
	Inventory    Contract
	Transactions Contract
	Feedback     Contract
}

// WithHeaderOverrides returns a copy of the set with per-field header
// names replaced from the given maps, keyed by logical field name.
func (s ContractSet) WithHeaderOverrides(inv, tx, fb map[string]string) ContractSet {
	s.Inventory = s.Inventory.withHeaders(inv)
	s.Transactions = s.Transactions.withHeaders(tx)
	s.Feedback = s.Feedback.withHeaders(fb)
	return s
}

func (c Contract) withHeaders(overrides map[string]string) Contract {
	if len(overrides) == 0 {
		return c
	}
	cols := make([]Column, len(c.Columns))
	copy(cols, c.Columns)
	for i := range cols {
		if h, ok := overrides[cols[i].Field]; ok && h != "" {
			cols[i].Header = h
		}
	}
	c.Columns = cols
	return c
}

// DefaultContracts returns the contracts for the standard export headers.
func DefaultContracts() ContractSet {
	return ContractSet{
		Inventory: Contract{
			Dataset: "inventory",
			Columns: []Column{
				{Field: "sku", Header: "sku", Type: TypeString, Identifying: true},
				{Field: "category", Header: "categoria", Type: TypeString},
				{Field: "warehouse", Header: "bodega_origen", Type: TypeString},
				{Field: "unit_cost", Header: "costo_unitario", Type: TypeDecimal},
				{Field: "stock", Header: "stock_actual", Type: TypeInt},
				{Field: "lead_time_days", Header: "lead_time_dias", Type: TypeString},
				{Field: "last_review", Header: "ultima_revision", Type: TypeDate},
			},
		},
		Transactions: Contract{
			Dataset: "transactions",
			Columns: []Column{
				{Field: "transaction_id", Header: "transaccion_id", Type: TypeString, Identifying: true},
				{Field: "sku", Header: "sku", Type: TypeString, Identifying: true},
				{Field: "sale_date", Header: "fecha_venta", Type: TypeDate},
				{Field: "channel", Header: "canal_venta", Type: TypeString},
				{Field: "city", Header: "ciudad_destino", Type: TypeString},
				{Field: "quantity", Header: "cantidad", Type: TypeInt},
				{Field: "unit_price", Header: "precio_unitario", Type: TypeDecimal},
				{Field: "shipping_cost", Header: "costo_envio", Type: TypeDecimal},
				{Field: "delivery_days", Header: "tiempo_entrega_dias", Type: TypeFloat},
			},
		},
		Feedback: Contract{
			Dataset: "feedback",
			Columns: []Column{
				{Field: "feedback_id", Header: "feedback_id", Type: TypeString, Identifying: true},
				{Field: "customer_id", Header: "cliente_id", Type: TypeString, Identifying: true},
				{Field: "transaction_id", Header: "transaccion_id", Type: TypeString},
				{Field: "sku", Header: "sku", Type: TypeString},
				{Field: "age", Header: "edad_cliente", Type: TypeFloat},
				{Field: "product_rating", Header: "rating_producto", Type: TypeFloat},
				{Field: "logistics_rating", Header: "rating_logistica", Type: TypeFloat},
				{Field: "nps", Header: "nps_score", Type: TypeFloat},
				{Field: "support_ticket", Header: "ticket_soporte", Type: TypeString},
				{Field: "recommend", Header: "recomienda_marca", Type: TypeString},
			},
		},
	}
}
