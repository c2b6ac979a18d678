package payload

// Headers is a lookup table built from a provider's array-of-pairs
// representation (email headers, CRM property lists). Lookups are
// exact-match on the provider's literal key spelling; providers are
// internally consistent, so no case folding is applied.
type Headers map[string]string

// IndexPairs builds a Headers table from an array of objects carrying
// nameKey/valueKey fields, e.g. Gmail's payload.headers with "name" and
// "value". When a name repeats, the last pair in array order wins: later
// headers in transit order are authoritative.
func IndexPairs(v Value, nameKey, valueKey string) Headers {
	arr, ok := v.Array()
	if !ok {
		return nil
	}
	h := make(Headers, len(arr))
	for _, elem := range arr {
		name, ok := elem.Get(nameKey).String()
		if !ok {
			continue
		}
		value, ok := elem.Get(valueKey).String()
		if !ok {
			continue
		}
		h[name] = value
	}
	return h
}

// Get returns the value for the exact header name.
func (h Headers) Get(name string) (string, bool) {
	v, ok := h[name]
	return v, ok
}

// Has reports whether the exact header name is present.
func (h Headers) Has(name string) bool {
	_, ok := h[name]
	return ok
}
