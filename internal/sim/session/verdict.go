package session

// Verdict is what every handler returns: whether the command took effect and
// how suspicious it was. Handlers never touch CheatScore themselves.
type Verdict struct {
	Accepted  bool
	Suspicion int
	Code      string
	Detail    string
}

func Accept() Verdict { return Verdict{Accepted: true} }

func Reject(code, detail string) Verdict {
	return Verdict{Code: code, Detail: detail}
}

// Suspect accepts the command but flags it.
func Suspect(delta int, code, detail string) Verdict {
	return Verdict{Accepted: true, Suspicion: delta, Code: code, Detail: detail}
}

// With merges another verdict's suspicion. The first non-empty code wins and
// the result is accepted only if both are.
func (v Verdict) With(o Verdict) Verdict {
	out := v
	out.Accepted = v.Accepted && o.Accepted
	out.Suspicion += o.Suspicion
	if out.Code == "" {
		out.Code, out.Detail = o.Code, o.Detail
	} else if o.Detail != "" {
		out.Detail += "; " + o.Detail
	}
	return out
}

// Noteworthy reports whether the verdict should reach the audit trail.
func (v Verdict) Noteworthy() bool {
	return v.Suspicion > 0 || (!v.Accepted && v.Code != "")
}
