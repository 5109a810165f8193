// Package luasearch runs a Lua script as the grid's external search provider.
//
// The script defines a global function
//
//	function search(rows, query) ... end
//
// which receives every row as a table (with the origin index under
// "__$index__") and returns either a list of row tables or a list of origin
// indexes. The grid keeps the returned order.
package luasearch

import (
	"context"
	"fmt"
	"sync"

	"github.com/olekukonko/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/bekirdag/gridview/internal/grid"
)

const entryPoint = "search"

// Provider owns one Lua state; calls are serialised.
type Provider struct {
	mu sync.Mutex
	L  *lua.LState
}

// Load runs the script file and checks it defines search.
func Load(path string) (*Provider, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, errors.Newf("load search script %s", path).Wrap(err)
	}
	return newProvider(L)
}

// LoadString is Load for an in-memory script.
func LoadString(src string) (*Provider, error) {
	L := lua.NewState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, errors.Newf("load search script").Wrap(err)
	}
	return newProvider(L)
}

func newProvider(L *lua.LState) (*Provider, error) {
	if _, ok := L.GetGlobal(entryPoint).(*lua.LFunction); !ok {
		L.Close()
		return nil, errors.Newf("search script does not define %s(rows, query)", entryPoint)
	}
	return &Provider{L: L}, nil
}

// Search matches grid.AISearchFunc.
func (p *Provider) Search(ctx context.Context, rows []grid.Row, query string) ([]grid.Row, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.L == nil {
		return nil, errors.New("search provider is closed")
	}
	L := p.L
	L.SetContext(ctx)
	defer L.RemoveContext()

	byIndex := make(map[int]grid.Row, len(rows))
	list := L.NewTable()
	for _, r := range rows {
		if idx, ok := grid.RowIndex(r); ok {
			byIndex[idx] = r
		}
		list.Append(rowTable(L, r))
	}

	fn := L.GetGlobal(entryPoint)
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, list, lua.LString(query)); err != nil {
		return nil, errors.Newf("search script failed").Wrap(err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	result, ok := ret.(*lua.LTable)
	if !ok {
		if ret == lua.LNil {
			return []grid.Row{}, nil
		}
		return nil, errors.Newf("search script returned %s, want a table", ret.Type().String())
	}

	out := make([]grid.Row, 0, result.Len())
	seen := map[int]bool{}
	for i := 1; i <= result.Len(); i++ {
		idx, ok := resultIndex(result.RawGetInt(i))
		if !ok || seen[idx] {
			continue
		}
		if r, found := byIndex[idx]; found {
			seen[idx] = true
			out = append(out, r)
		}
	}
	return out, nil
}

// Close releases the Lua state.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.L != nil {
		p.L.Close()
		p.L = nil
	}
}

func resultIndex(v lua.LValue) (int, bool) {
	switch val := v.(type) {
	case lua.LNumber:
		return int(val), true
	case *lua.LTable:
		if n, ok := val.RawGetString(grid.IndexKey).(lua.LNumber); ok {
			return int(n), true
		}
	}
	return 0, false
}

func rowTable(L *lua.LState, r grid.Row) *lua.LTable {
	t := L.NewTable()
	for k, v := range r {
		t.RawSetString(k, toLua(L, v))
	}
	return t
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case []any:
		t := L.NewTable()
		for _, item := range val {
			t.Append(toLua(L, item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLua(L, item))
		}
		return t
	}
	return lua.LString(fmt.Sprint(v))
}
