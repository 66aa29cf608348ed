package filter

// Expression is a declarative layer-filter expression for the rendering
// engine, in the legacy array grammar: ["in", "fid", ids...] selects by
// feature id. In that grammar a bare ["in", "fid"] with no ids is NOT "match
// nothing" in every implementation, so a zero-match result under active
// criteria is translated to an explicit sentinel instead.
type Expression []interface{}

// MatchNothing is the sentinel expression guaranteed to match zero features:
// no fid is negative.
func MatchNothing() Expression {
	return Expression{"==", "fid", -1}
}

// IncludeFIDs builds an id-based inclusion expression.
func IncludeFIDs(fids []int64) Expression {
	expr := make(Expression, 0, len(fids)+2)
	expr = append(expr, "in", "fid")
	for _, fid := range fids {
		expr = append(expr, fid)
	}
	return expr
}

// IsMatchNothing reports whether expr is the sentinel.
func IsMatchNothing(expr Expression) bool {
	return len(expr) == 3 && expr[0] == "==" && expr[1] == "fid" && expr[2] == -1
}
