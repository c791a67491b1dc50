package expr

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Strob0t/TaskForge/internal/domain"
)

// Sandboxed is the restricted evaluator. It resolves only a fixed set of
// functions and never reaches into arbitrary objects, so stored filters
// cannot smuggle code into later executions.
type Sandboxed struct{}

// NewSandboxed returns the restricted evaluator.
func NewSandboxed() *Sandboxed { return &Sandboxed{} }

func (s *Sandboxed) Evaluate(expression string, ctx Context) (any, error) {
	body, ok := strings.CutPrefix(expression, "${")
	if !ok {
		return nil, domain.Validationf("expression %q must start with ${", expression)
	}
	body, ok = strings.CutSuffix(body, "}")
	if !ok {
		return nil, domain.Validationf("expression %q must end with }", expression)
	}
	p := &parser{src: strings.TrimSpace(body), expr: expression}
	v, err := p.primary(ctx)
	if err != nil {
		return nil, err
	}
	for p.peek() == '.' {
		t, ok := v.(time.Time)
		if !ok {
			return nil, domain.Validationf("expression %q: method calls are only allowed on time values", expression)
		}
		v, err = p.timeMethod(t)
		if err != nil {
			return nil, err
		}
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, domain.Validationf("expression %q: unexpected trailing input %q", expression, p.src[p.pos:])
	}
	return v, nil
}

type parser struct {
	src  string
	pos  int
	expr string
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) primary(ctx Context) (any, error) {
	switch c := p.peek(); {
	case c == '\'':
		return p.stringLiteral()
	case unicode.IsLetter(rune(c)):
		name := p.ident()
		if err := p.expect("()"); err != nil {
			return nil, err
		}
		switch name {
		case "currentUser":
			return ctx.CurrentUser(), nil
		case "currentUserGroups":
			return ctx.CurrentUserGroups(), nil
		case "now", "dateTime":
			return ctx.Now(), nil
		default:
			return nil, domain.Validationf("expression %q: unknown function %s()", p.expr, name)
		}
	default:
		return nil, domain.Validationf("expression %q: expected a function call or string literal", p.expr)
	}
}

func (p *parser) timeMethod(t time.Time) (time.Time, error) {
	p.pos++ // consume '.'
	name := p.ident()
	if err := p.expect("("); err != nil {
		return time.Time{}, err
	}
	n, err := p.intLiteral()
	if err != nil {
		return time.Time{}, err
	}
	if err := p.expect(")"); err != nil {
		return time.Time{}, err
	}
	switch name {
	case "plusDays":
		return t.AddDate(0, 0, n), nil
	case "minusDays":
		return t.AddDate(0, 0, -n), nil
	case "plusHours":
		return t.Add(time.Duration(n) * time.Hour), nil
	case "minusHours":
		return t.Add(-time.Duration(n) * time.Hour), nil
	default:
		return time.Time{}, domain.Validationf("expression %q: unknown time method %s()", p.expr, name)
	}
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && (unicode.IsLetter(rune(p.src[p.pos])) || unicode.IsDigit(rune(p.src[p.pos]))) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) expect(tok string) error {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], tok) {
		return domain.Validationf("expression %q: expected %q at offset %d", p.expr, tok, p.pos)
	}
	p.pos += len(tok)
	return nil
}

func (p *parser) stringLiteral() (string, error) {
	p.pos++ // consume opening quote
	end := strings.IndexByte(p.src[p.pos:], '\'')
	if end < 0 {
		return "", domain.Validationf("expression %q: unterminated string literal", p.expr)
	}
	s := p.src[p.pos : p.pos+end]
	p.pos += end + 1
	return s, nil
}

func (p *parser) intLiteral() (int, error) {
	p.skipSpace()
	start := p.pos
	if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, domain.Validationf("expression %q: expected an integer at offset %d", p.expr, start)
	}
	return n, nil
}
