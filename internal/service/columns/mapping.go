package columns

// Mapping is the resolved column of every canonical field for one sheet.
// It is a value: copies are independent and nothing mutates it after Resolve.
// The zero Mapping has no field bound.
type Mapping struct {
	// column index + 1, 0 when unbound
	pos     [fieldCount]int
	headers [fieldCount]string
}

// Column returns the 0-based column index bound to f.
func (m Mapping) Column(f Field) (int, bool) {
	if !f.Valid() || m.pos[f] == 0 {
		return -1, false
	}
	return m.pos[f] - 1, true
}

// Header returns the header text of the column bound to f, "" if unbound.
func (m Mapping) Header(f Field) string {
	if !f.Valid() {
		return ""
	}
	return m.headers[f]
}

// Headers returns field name -> header text for every bound field.
func (m Mapping) Headers() map[string]string {
	out := make(map[string]string, fieldCount)
	for f := Date; f < fieldCount; f++ {
		if m.pos[f] != 0 {
			out[f.String()] = m.headers[f]
		}
	}
	return out
}

// Missing lists the mandatory fields left unbound, in resolution order.
func (m Mapping) Missing() []Field {
	var missing []Field
	for f := Date; f < fieldCount; f++ {
		if f.Mandatory() && m.pos[f] == 0 {
			missing = append(missing, f)
		}
	}
	return missing
}

func (m *Mapping) bind(f Field, column int, header string) {
	m.pos[f] = column + 1
	m.headers[f] = header
}
