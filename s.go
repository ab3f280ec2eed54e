package savitzkygolay
type Filter struct{}
func NewFilter(w, d, o int) (*Filter, error) { return &Filter{}, nil }
func (f *Filter) Process(x, t []float64) ([]float64, error) { return x, nil }
