package constants

// Built-in header aliases, written the way they appear in exported sheets.
// They are normalized by the columns package before matching.
var (
	// data
	DateAliases = map[string]bool{
		"Data":               true,
		"Date":               true,
		"Giorno":             true,
		"Day":                true,
		"Data produzione":    true,
		"Data registrazione": true,
		"Data lavorazione":   true,
		"Production date":    true,
	}

	// dipendente
	EmployeeAliases = map[string]bool{
		"Dipendente":     true,
		"Operatore":      true,
		"Addetto":        true,
		"Nome operatore": true,
		"Employee":       true,
		"Operator":       true,
		"Worker":         true,
		"Worker name":    true,
		"Responsabile":   true,
	}

	// processo
	ProcessAliases = map[string]bool{
		"Processo":         true,
		"Fase":             true,
		"Fase produttiva":  true,
		"Reparto":          true,
		"Linea":            true,
		"Operazione":       true,
		"Lavorazione":      true,
		"Process":          true,
		"Stage":            true,
		"Production stage": true,
	}

	// quantità
	QuantityAliases = map[string]bool{
		"Quantità":          true,
		"Quantità prodotta": true,
		"Pezzi":             true,
		"Pezzi prodotti":    true,
		"Numero pezzi":      true,
		"Qta":               true,
		"Qta prodotta":      true,
		"Quantity":          true,
		"Pieces":            true,
		"Output":            true,
	}

	// durata
	DurationAliases = map[string]bool{
		"Durata":          true,
		"Durata (min)":    true,
		"Durata minuti":   true,
		"Minuti":          true,
		"Minuti lavorati": true,
		"Tempo (min)":     true,
		"Tempo totale":    true,
		"Duration":        true,
		"Minutes":         true,
		"Cycle minutes":   true,
	}

	// macchina
	MachineAliases = map[string]bool{
		"Macchina":   true,
		"Impianto":   true,
		"Postazione": true,
		"Machine":    true,
		"Equipment":  true,
	}

	// tipo processo
	ProcessTypeAliases = map[string]bool{
		"Tipo processo":  true,
		"Tipologia":      true,
		"Categoria":      true,
		"Process type":   true,
		"Process family": true,
	}
)
