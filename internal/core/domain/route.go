package domain

import (
	"net/url"
	"strings"
)

// Клиентские пути приложения.
const (
	PathHome           = "/home"
	PathProperties     = "/properties"
	PathPropertyDetail = "/property-detail"
	PathContact        = "/contact"
	PathAbout          = "/about"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathCreateProperty = "/create-property"
)

// Route - цель навигации: путь и необязательные query-параметры.
type Route struct {
	Path    string
	Query   map[string]string
	Replace bool
}

func NewRoute(path string) Route {
	return Route{Path: path}
}

// WithQuery возвращает копию маршрута с добавленным параметром.
func (r Route) WithQuery(key, value string) Route {
	q := make(map[string]string, len(r.Query)+1)
	for k, v := range r.Query {
		q[k] = v
	}
	q[key] = value
	r.Query = q
	return r
}

// String собирает путь вместе с query-строкой.
func (r Route) String() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	values := url.Values{}
	for k, v := range r.Query {
		values.Set(k, v)
	}
	return r.Path + "?" + values.Encode()
}

// ParseRoute разбирает строку вида "/contact?property=Modern%20Apartment".
func ParseRoute(raw string) (Route, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Route{}, err
	}
	route := Route{Path: u.Path}
	if q := u.Query(); len(q) > 0 {
		route.Query = make(map[string]string, len(q))
		for k := range q {
			route.Query[k] = q.Get(k)
		}
	}
	return route, nil
}

// PropertyDetailRoute - маршрут карточки объявления.
func PropertyDetailRoute(id string) Route {
	return Route{Path: PathPropertyDetail + "/" + url.PathEscape(id)}
}
