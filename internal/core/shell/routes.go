package shell

import (
	"context"
	"net/url"
	"strings"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/view"
)

// Имена экранов совпадают с ключами манифестов.
const (
	ViewHome           = "home"
	ViewProperties     = "properties"
	ViewPropertyDetail = "property-detail"
	ViewContact        = "contact"
	ViewAbout          = "about"
	ViewLogin          = "login"
	ViewRegister       = "register"
	ViewCreateProperty = "create-property"
)

var viewNames = []string{
	ViewHome, ViewProperties, ViewPropertyDetail, ViewContact,
	ViewAbout, ViewLogin, ViewRegister, ViewCreateProperty,
}

type controllerFactory func(ctx context.Context, deps view.Deps, route domain.Route, param string) view.Controller

type routeEntry struct {
	view  string
	build controllerFactory
}

var routeTable = map[string]routeEntry{
	domain.PathHome: {ViewHome, func(ctx context.Context, deps view.Deps, _ domain.Route, _ string) view.Controller {
		return view.NewHomeController(ctx, deps)
	}},
	domain.PathProperties: {ViewProperties, func(ctx context.Context, deps view.Deps, _ domain.Route, _ string) view.Controller {
		return view.NewIndexController(ctx, deps)
	}},
	domain.PathPropertyDetail: {ViewPropertyDetail, func(ctx context.Context, deps view.Deps, _ domain.Route, id string) view.Controller {
		return view.NewDetailController(ctx, deps, id)
	}},
	domain.PathContact: {ViewContact, func(ctx context.Context, deps view.Deps, route domain.Route, _ string) view.Controller {
		return view.NewViewingRequestController(ctx, deps, route)
	}},
	domain.PathAbout: {ViewAbout, func(context.Context, view.Deps, domain.Route, string) view.Controller {
		return staticView{}
	}},
	domain.PathLogin: {ViewLogin, func(ctx context.Context, deps view.Deps, _ domain.Route, _ string) view.Controller {
		return view.NewSignInController(ctx, deps)
	}},
	domain.PathRegister: {ViewRegister, func(ctx context.Context, deps view.Deps, _ domain.Route, _ string) view.Controller {
		return view.NewSignUpController(ctx, deps)
	}},
	domain.PathCreateProperty: {ViewCreateProperty, func(ctx context.Context, deps view.Deps, _ domain.Route, _ string) view.Controller {
		return view.NewCreateListingController(ctx, deps)
	}},
}

// resolveRoute находит запись таблицы. "/property-detail/abc" дает параметр "abc".
// Корень и неизвестные пути ведут на /home.
func resolveRoute(route domain.Route) (domain.Route, routeEntry, string) {
	path := "/" + strings.Trim(route.Path, "/")

	if entry, ok := routeTable[path]; ok {
		route.Path = path
		return route, entry, ""
	}

	prefix := domain.PathPropertyDetail + "/"
	if strings.HasPrefix(path, prefix) {
		raw := strings.TrimPrefix(path, prefix)
		if id, err := url.PathUnescape(raw); err == nil && id != "" && !strings.Contains(id, "/") {
			route.Path = path
			return route, routeTable[domain.PathPropertyDetail], id
		}
	}

	home := domain.Route{Path: domain.PathHome, Replace: true}
	return home, routeTable[domain.PathHome], ""
}

// staticView - экран без состояния.
type staticView struct{}

func (staticView) Snapshot() any { return struct{}{} }

func (staticView) Handle(context.Context, view.Action) error { return view.ErrUnsupportedAction }

func (staticView) Close() {}
