package schedule

// Builder assembles a Data from an expression and optional modifiers.
type Builder struct {
	data Data
}

// NewBuilder starts a builder for expr.
func NewBuilder(expr Expr) *Builder {
	return &Builder{data: Data{Expr: expr}}
}

// Except appends dates to skip.
func (b *Builder) Except(excs ...Exception) *Builder {
	b.data.Except = append(b.data.Except, excs...)
	return b
}

// Until sets the inclusive upper bound.
func (b *Builder) Until(u Until) *Builder {
	b.data.Until = u
	return b
}

// Starting sets the alignment anchor, an ISO date string.
func (b *Builder) Starting(anchor string) *Builder {
	b.data.Anchor = anchor
	return b
}

// During restricts occurrences to the given months.
func (b *Builder) During(months ...Month) *Builder {
	b.data.During = append(b.data.During, months...)
	return b
}

// In sets the IANA timezone name.
func (b *Builder) In(tz string) *Builder {
	b.data.Timezone = tz
	return b
}

// Build returns the assembled Data.
func (b *Builder) Build() *Data {
	d := b.data
	return &d
}
