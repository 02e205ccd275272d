package routes

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func namedHandler(name string) HandlerFactory {
	return func(InitParams) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.String(http.StatusOK, name)
		}
	}
}

func get(t *testing.T, engine *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestRegisterAndDispatch(t *testing.T) {
	engine := gin.New()
	r := NewRegistrar(engine)

	if err := r.Register("/robots.txt", Specific, namedHandler("robots")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("/git/*", RestrictedExact, namedHandler("git")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if w := get(t, engine, "/robots.txt"); w.Body.String() != "robots" {
		t.Errorf("expected robots handler, got %q", w.Body.String())
	}
	if w := get(t, engine, "/git/project.git/info/refs"); w.Body.String() != "git" {
		t.Errorf("expected git handler, got %q", w.Body.String())
	}
}

func TestFiltersRunAheadOfHandler(t *testing.T) {
	engine := gin.New()
	r := NewRegistrar(engine)

	var order []string
	filter := func(name string) HandlerFactory {
		return func(InitParams) gin.HandlerFunc {
			return func(c *gin.Context) {
				order = append(order, name)
				c.Next()
			}
		}
	}
	handler := func(InitParams) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, "handler")
			c.Status(http.StatusOK)
		}
	}

	if err := r.Register("/rpc/*", RestrictedExact, handler, filter("f1"), filter("f2")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	get(t, engine, "/rpc/list")

	if !reflect.DeepEqual(order, []string{"f1", "f2", "handler"}) {
		t.Errorf("unexpected chain order: %v", order)
	}
}

func TestExclusionListIsExactSet(t *testing.T) {
	engine := gin.New()
	r := NewRegistrar(engine)

	r.Register("/r/*", RestrictedExact, namedHandler("r"))
	r.Register("/git/*", RestrictedExact, namedHandler("git"))
	// Duplicate registrations must not duplicate exclusion entries.
	r.Register("/git/*", RestrictedExact, namedHandler("git-again"))
	r.Register("/robots.txt", Specific, namedHandler("robots"))

	var gotParams InitParams
	catchAll := func(params InitParams) gin.HandlerFunc {
		gotParams = params
		return func(c *gin.Context) {
			c.String(http.StatusOK, "ui")
		}
	}
	if err := r.FinalizeCatchAll(catchAll, InitParams{"filter.mapping": "/*"}); err != nil {
		t.Fatalf("FinalizeCatchAll failed: %v", err)
	}

	want := "/r/*,/git/*,/robots.txt"
	if gotParams[IgnorePathsParam] != want {
		t.Errorf("expected exclusion list %q, got %q", want, gotParams[IgnorePathsParam])
	}
	if gotParams["filter.mapping"] != "/*" {
		t.Errorf("expected caller params preserved, got %v", gotParams)
	}

	// Specific routes still win over the catch-all; unknown paths fall through.
	if w := get(t, engine, "/r/some.git"); w.Body.String() != "r" {
		t.Errorf("expected restricted handler, got %q", w.Body.String())
	}
	if w := get(t, engine, "/summary/some-project"); w.Body.String() != "ui" {
		t.Errorf("expected catch-all, got %q", w.Body.String())
	}
}

func TestRegisterAfterFinalizeFails(t *testing.T) {
	engine := gin.New()
	r := NewRegistrar(engine)

	if err := r.FinalizeCatchAll(namedHandler("ui"), nil); err != nil {
		t.Fatalf("FinalizeCatchAll failed: %v", err)
	}
	if err := r.Register("/late/*", Specific, namedHandler("late")); err != ErrFinalized {
		t.Errorf("expected ErrFinalized, got %v", err)
	}
	if err := r.FinalizeCatchAll(namedHandler("ui2"), nil); err != ErrFinalized {
		t.Errorf("expected ErrFinalized on double finalize, got %v", err)
	}
}

func TestRegisterWithParams(t *testing.T) {
	engine := gin.New()
	r := NewRegistrar(engine)

	handler := func(params InitParams) gin.HandlerFunc {
		base := params["export.base"]
		return func(c *gin.Context) {
			c.String(http.StatusOK, base)
		}
	}
	err := r.RegisterWithParams("/git/*", RestrictedExact,
		InitParams{"export.base": "/srv/git"}, handler)
	if err != nil {
		t.Fatalf("RegisterWithParams failed: %v", err)
	}

	if w := get(t, engine, "/git/x"); w.Body.String() != "/srv/git" {
		t.Errorf("expected init-parameter value, got %q", w.Body.String())
	}
}

func TestCatchAllClassRejectedFromRegister(t *testing.T) {
	r := NewRegistrar(gin.New())
	if err := r.Register("/*", CatchAll, namedHandler("ui")); err == nil {
		t.Error("expected error registering catch-all via Register")
	}
}

func TestAuthFilterAheadOfCatchAll(t *testing.T) {
	engine := gin.New()
	r := NewRegistrar(engine)

	r.Register("/git/*", RestrictedExact, namedHandler("git"))

	var filtered bool
	r.UseAuthFilter(func(c *gin.Context) {
		filtered = true
		c.Next()
	})

	var gotParams InitParams
	r.FinalizeCatchAll(func(params InitParams) gin.HandlerFunc {
		gotParams = params
		return func(c *gin.Context) { c.String(http.StatusOK, "ui") }
	}, nil)

	// The filter applies to catch-all traffic...
	if w := get(t, engine, "/anything"); w.Body.String() != "ui" {
		t.Errorf("expected catch-all, got %q", w.Body.String())
	}
	if !filtered {
		t.Error("expected auth filter to run ahead of the catch-all")
	}

	// ...and its presence does not disturb the exclusion list.
	if !strings.Contains(gotParams[IgnorePathsParam], "/git/*") {
		t.Errorf("exclusion list disturbed: %q", gotParams[IgnorePathsParam])
	}

	// Restricted routes keep their own chains.
	filtered = false
	if w := get(t, engine, "/git/x"); w.Body.String() != "git" {
		t.Errorf("expected git handler, got %q", w.Body.String())
	}
	if filtered {
		t.Error("auth filter must not wrap routes registered before it")
	}
}

func TestGinPattern(t *testing.T) {
	cases := map[string]string{
		"/r/*":        "/r/*path",
		"/pages/":     "/pages/*path",
		"/robots.txt": "/robots.txt",
		"/":           "/",
	}
	for in, want := range cases {
		if got := ginPattern(in); got != want {
			t.Errorf("ginPattern(%q): expected %q, got %q", in, want, got)
		}
	}
}
