package cleaning

// Default mapping tables for the retail-logistics source systems. The keys
// cover the spellings and abbreviations observed in historical extracts;
// anything else passes through as unmapped and shows up in the report.

// DefaultCategoryMapping canonicalizes product categories.
func DefaultCategoryMapping() Mapping {
	return NewMapping(map[string]string{
		"smart-phone": "Smartphones",
		"smartphone":  "Smartphones",
		"smartphones": "Smartphones",
		"accesorios":  "Accessories",
		"accessories": "Accessories",
		"monitores":   "Monitors",
		"monitors":    "Monitors",
		"tablets":     "Tablets",
		"laptops":     "Laptops",
		"audio":       "Audio",
		"gaming":      "Gaming",
		"wearables":   "Wearables",
	})
}

// DefaultWarehouseMapping canonicalizes origin warehouses.
func DefaultWarehouseMapping() Mapping {
	return NewMapping(map[string]string{
		"norte":      "Norte",
		"sur":        "Sur",
		"occidente":  "Occidente",
		"oriente":    "Oriente",
		"centro":     "Centro",
		"zona_franca": "Zona Franca",
		"zona franca": "Zona Franca",
		"bod-ext-99":  "Bodega Externa",
	})
}

// DefaultCityMapping canonicalizes destination cities.
func DefaultCityMapping() Mapping {
	return NewMapping(map[string]string{
		"med":          "Medellín",
		"medellin":     "Medellín",
		"medellín":     "Medellín",
		"bog":          "Bogotá",
		"bogota":       "Bogotá",
		"bogotá":       "Bogotá",
		"cali":         "Cali",
		"barranquilla": "Barranquilla",
		"bucaramanga":  "Bucaramanga",
		"cartagena":    "Cartagena",
		"pereira":      "Pereira",
		"manizales":    "Manizales",
		"santa marta":  "Santa Marta",
		"ibague":       "Ibagué",
		"ibagué":       "Ibagué",
		"cucuta":       "Cúcuta",
		"cúcuta":       "Cúcuta",
	})
}

// DefaultChannelMapping canonicalizes sales channels.
func DefaultChannelMapping() Mapping {
	return NewMapping(map[string]string{
		"web":        "Online",
		"online":     "Online",
		"ecommerce":  "Online",
		"ventas_web": "Online",
		"app":        "App",
		"tienda":     "Retail",
		"retail":     "Retail",
		"store":      "Retail",
		"marketplace": "Marketplace",
		"distribuidor": "Wholesale",
		"wholesale":    "Wholesale",
	})
}

// DefaultRecommendMapping canonicalizes the brand-recommendation answer.
func DefaultRecommendMapping() Mapping {
	return NewMapping(map[string]string{
		"sí":     "Yes",
		"si":     "Yes",
		"yes":    "Yes",
		"true":   "Yes",
		"no":     "No",
		"false":  "No",
		"maybe":  "Maybe",
		"quizas": "Maybe",
		"quizás": "Maybe",
	})
}

var ticketTrue = map[string]bool{
	"sí": true, "si": true, "yes": true, "true": true, "1": true,
}

var ticketFalse = map[string]bool{
	"no": true, "false": true, "0": true,
}

// ParseTicket maps a support-ticket answer to a tri-state flag. Sentinel
// and unlisted values stay nil (unanswered).
func ParseTicket(raw string) *bool {
	key := foldKey(raw)
	if ticketTrue[key] {
		v := true
		return &v
	}
	if ticketFalse[key] {
		v := false
		return &v
	}
	return nil
}
