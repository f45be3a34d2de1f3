package listener

// Proxy is a [Listener] that stands in for another listener, its target.
// Proxies hide whatever their target declares about itself, so the target is consulted through [UnwrapTarget] when
// matching events and when avoiding duplicate registrations.
type Proxy interface {
	Listener
	Target() Listener
}

// maxProxyDepth guards against proxies that target themselves, directly or indirectly.
const maxProxyDepth = 32

// Targets returns the chain of targets behind l, nearest first.
// The result is empty if l is not a [Proxy].
func Targets(l Listener) []Listener {
	var chain []Listener
	for i := 0; i < maxProxyDepth; i++ {
		p, ok := l.(Proxy)
		if !ok {
			break
		}
		next := p.Target()
		if next == nil {
			break
		}
		chain = append(chain, next)
		l = next
	}
	return chain
}

// UnwrapTarget returns the innermost target behind l, or l itself if it isn't a [Proxy].
func UnwrapTarget(l Listener) Listener {
	chain := Targets(l)
	if len(chain) == 0 {
		return l
	}
	return chain[len(chain)-1]
}

// Interceptor wraps delivery of an event to a proxied listener.
// Calling next continues delivery, possibly with a different event. Not calling next stops delivery to the target.
type Interceptor func(evt Event, next func(evt Event))

// Intercepted is a [Proxy] that passes events through a chain of [Interceptor] functions before delivering them to
// its target. It has the same priority as its target.
type Intercepted struct {
	target Listener
	chain  []Interceptor
}

// Intercept creates a proxy for target.
// Interceptors run in the order given, with the first interceptor being the outermost.
func Intercept(target Listener, interceptors ...Interceptor) *Intercepted {
	if target == nil {
		panic("nil proxy target")
	}
	for _, i := range interceptors {
		if i == nil {
			panic("nil interceptor")
		}
	}
	return &Intercepted{
		target: target,
		chain:  interceptors,
	}
}

func (p *Intercepted) Target() Listener {
	return p.target
}

func (p *Intercepted) Order() int {
	return PriorityOf(p.target)
}

func (p *Intercepted) OnEvent(evt Event) {
	p.invoke(0, evt)
}

func (p *Intercepted) invoke(idx int, evt Event) {
	if idx >= len(p.chain) {
		p.target.OnEvent(evt)
		return
	}
	p.chain[idx](evt, func(evt Event) {
		p.invoke(idx+1, evt)
	})
}
