package shell

import (
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
)

type GuardDecision int

const (
	GuardAllow GuardDecision = iota
	GuardRedirect
)

func (d GuardDecision) String() string {
	if d == GuardRedirect {
		return "redirect"
	}
	return "allow"
}

// RouteGuard пропускает на защищенные маршруты только с активной сессией.
// Решение принимается один раз на переход по первому уже известному значению сессии;
// последующие изменения сессии на открытый экран не влияют.
type RouteGuard struct {
	session   port.SessionProviderPort
	protected map[string]bool
}

func NewRouteGuard(session port.SessionProviderPort, protectedPaths ...string) *RouteGuard {
	protected := make(map[string]bool, len(protectedPaths))
	for _, p := range protectedPaths {
		protected[p] = true
	}
	return &RouteGuard{session: session, protected: protected}
}

func (g *RouteGuard) Protects(path string) bool {
	return g.protected[path]
}

// Check возвращает решение и маршрут, на который нужно перейти.
func (g *RouteGuard) Check(route domain.Route) (GuardDecision, domain.Route) {
	if !g.Protects(route.Path) {
		return GuardAllow, route
	}
	if g.currentIdentity() != nil {
		return GuardAllow, route
	}
	return GuardRedirect, domain.NewRoute(domain.PathLogin)
}

// currentIdentity не ждет новых значений: если значение еще не известно, сессии нет.
func (g *RouteGuard) currentIdentity() *domain.Identity {
	sub := g.session.CurrentSession()
	defer sub.Close()

	select {
	case identity := <-sub.C():
		return identity
	default:
		return nil
	}
}
