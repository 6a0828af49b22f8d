package server

import (
	"go/ast"
	"go/parser"
	"go/token"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

type registeredRoute struct {
	method  string
	path    string
	handler string
}

func TestRegisteredRoutesHaveHandlers(t *testing.T) {
	routes := parseRegisteredRoutes(t)
	handlers := parseServerHandlers(t)
	if len(routes) == 0 {
		t.Fatal("no routes discovered")
	}
	for _, route := range routes {
		if _, ok := handlers[route.handler]; !ok {
			t.Fatalf("handler %q for %s %s not found", route.handler, route.method, route.path)
		}
	}
}

func TestMutationRoutesRequireWriterAccess(t *testing.T) {
	routes := parseRegisteredRoutes(t)

	checked := 0
	for _, route := range routes {
		if !isMutationMethod(route.method) {
			continue
		}
		if !strings.HasPrefix(route.path, "/api/blog/") && !strings.HasPrefix(route.path, "/api/admin/") {
			continue
		}
		req := httptest.NewRequest(route.method, concretePath(route.path), nil)
		if got := routeAccessFor(req); got != accessWriter {
			t.Fatalf("%s %s: expected writer access, got %d", route.method, route.path, got)
		}
		checked++
	}
	if checked == 0 {
		t.Fatal("no blog mutation routes discovered")
	}
}

func TestBlobAccessStaysInImageHelpers(t *testing.T) {
	handlers := parseServerHandlers(t)
	for name, fn := range handlers {
		if name == "handleGetImage" {
			continue
		}
		if calls := receiverFieldCalls(fn, "blobs"); len(calls) > 0 {
			t.Fatalf("handler %q calls s.blobs directly: %v", name, calls)
		}
	}
}

func parseRegisteredRoutes(t *testing.T) []registeredRoute {
	t.Helper()

	routesPath := filepath.Join(serverPackageDir(t), "routes.go")
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, routesPath, nil, 0)
	if err != nil {
		t.Fatalf("parse routes.go: %v", err)
	}

	routes := make([]registeredRoute, 0)
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || sel.Sel.Name != "HandleFunc" || len(call.Args) != 2 {
			return true
		}

		patternLit, ok := call.Args[0].(*ast.BasicLit)
		if !ok || patternLit.Kind != token.STRING {
			return true
		}
		pattern, err := strconv.Unquote(patternLit.Value)
		if err != nil {
			t.Fatalf("unquote route pattern %q: %v", patternLit.Value, err)
		}
		method, path, ok := strings.Cut(pattern, " ")
		if !ok {
			return true
		}

		handlerSel, ok := call.Args[1].(*ast.SelectorExpr)
		if !ok {
			return true
		}
		recv, ok := handlerSel.X.(*ast.Ident)
		if !ok || recv.Name != "s" {
			return true
		}

		routes = append(routes, registeredRoute{
			method:  strings.TrimSpace(method),
			path:    strings.TrimSpace(path),
			handler: handlerSel.Sel.Name,
		})
		return true
	})

	return routes
}

func parseServerHandlers(t *testing.T) map[string]*ast.FuncDecl {
	t.Helper()

	files, err := filepath.Glob(filepath.Join(serverPackageDir(t), "handlers*.go"))
	if err != nil {
		t.Fatalf("glob handler files: %v", err)
	}

	out := make(map[string]*ast.FuncDecl)
	fset := token.NewFileSet()
	for _, filePath := range files {
		if strings.HasSuffix(filePath, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filePath, nil, 0)
		if err != nil {
			t.Fatalf("parse %s: %v", filePath, err)
		}
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || !strings.HasPrefix(fn.Name.Name, "handle") {
				continue
			}
			if !isServerReceiver(fn.Recv) {
				continue
			}
			out[fn.Name.Name] = fn
		}
	}
	if len(out) == 0 {
		t.Fatal("no handlers found")
	}
	return out
}

// receiverFieldCalls lists methods called as s.<field>.<method>(...).
func receiverFieldCalls(fn *ast.FuncDecl, field string) []string {
	var calls []string
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		selector, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		chain, ok := selector.X.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		recv, ok := chain.X.(*ast.Ident)
		if ok && recv.Name == "s" && chain.Sel.Name == field {
			calls = append(calls, selector.Sel.Name)
		}
		return true
	})
	return calls
}

func isMutationMethod(method string) bool {
	switch method {
	case "POST", "PATCH", "PUT", "DELETE":
		return true
	default:
		return false
	}
}

// concretePath fills route wildcards with sample values.
func concretePath(pattern string) string {
	parts := strings.Split(pattern, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			parts[i] = "sample"
		}
	}
	return strings.Join(parts, "/")
}

func isServerReceiver(recv *ast.FieldList) bool {
	if recv == nil || len(recv.List) != 1 {
		return false
	}
	star, ok := recv.List[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	ident, ok := star.X.(*ast.Ident)
	return ok && ident.Name == "Server"
}

func serverPackageDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Dir(file)
}
