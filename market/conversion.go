package market

// Converter translates quote-currency P/L into the account currency.
//
// Today the rate is a fixed configured constant. Keeping the conversion
// behind this one type means a live rate source can replace it later without
// touching any P/L formula.
type Converter struct {
	rate float64
}

// NewConverter builds a converter with a fixed quote->account rate.
func NewConverter(rate float64) Converter {
	return Converter{rate: rate}
}

// ToAccount converts a quote-currency amount into the account currency.
func (c Converter) ToAccount(quote float64) float64 {
	return quote * c.rate
}

// Rate returns the configured quote->account rate.
func (c Converter) Rate() float64 {
	return c.rate
}
