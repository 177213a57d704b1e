package script

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/kode4food/lru"

	"github.com/Heropr/ask-me-anything/pkg/api"
)

type (
	// LuaEnv provides a sandboxed Lua execution environment with a compile
	// cache and state pooling
	LuaEnv struct {
		cache     *lru.Cache[*CompiledLua]
		statePool chan *lua.State
	}

	// CompiledLua represents a compiled transition script
	CompiledLua struct {
		bytecode []byte
	}
)

const (
	luaCacheSize        = 1024
	luaStatePoolSize    = 4
	luaGlobalTableIndex = -2
	luaArrayTableIndex  = -3
	luaMapTableIndex    = -3
	luaGlobalTableName  = "_G"
	luaSeparator        = "\n"
)

var (
	ErrLuaLoad      = errors.New("lua load error")
	ErrLuaExecution = errors.New("lua execution error")
	ErrLuaResult    = errors.New("lua script must return a step id string")
)

// ArgNames are the locals bound for every transition script, in order
var ArgNames = []string{"choice_id", "choice_label", "data"}

var luaExclude = [...]string{
	"io", "os", "debug", "package", "require", "dofile", "loadfile", "load",
}

// NewLuaEnv creates a new Lua environment
func NewLuaEnv() *LuaEnv {
	return &LuaEnv{
		cache:     lru.NewCache[*CompiledLua](luaCacheSize),
		statePool: make(chan *lua.State, luaStatePoolSize),
	}
}

// Validate checks that the script compiles
func (e *LuaEnv) Validate(src string) error {
	_, err := e.Compile(src)
	return err
}

// Compile compiles a transition script, reusing cached bytecode when the
// same source was compiled before
func (e *LuaEnv) Compile(src string) (*CompiledLua, error) {
	return e.cache.Get(hashScript(src), func() (*CompiledLua, error) {
		return e.compile(wrapSource(src))
	})
}

// NextStep runs a transition script and returns the step it selects. An
// empty string result means the script selected no step
func (e *LuaEnv) NextStep(
	src string, ch *api.Choice, st api.FlowState,
) (api.StepID, error) {
	proc, err := e.Compile(src)
	if err != nil {
		return "", err
	}

	var res api.StepID
	err = e.withCompiledResult(proc, scriptArgs(ch, st),
		func(L *lua.State) error {
			defer L.Pop(1)
			switch L.TypeOf(-1) {
			case lua.TypeNil:
				return nil
			case lua.TypeString:
				s, _ := L.ToString(-1)
				res = api.StepID(s)
				return nil
			default:
				return fmt.Errorf("%w: got %s", ErrLuaResult,
					lua.TypeNameOf(L, -1))
			}
		},
	)
	return res, err
}

func scriptArgs(ch *api.Choice, st api.FlowState) []any {
	var id, label any
	if ch != nil {
		id, label = ch.ID, ch.Label
	}
	data := map[string]any{}
	for k, v := range st.Data {
		data[k] = v
	}
	return []any{id, label, data}
}

func wrapSource(src string) string {
	locals := make([]string, len(ArgNames))
	for i, name := range ArgNames {
		locals[i] = fmt.Sprintf("local %s = select(%d, ...)", name, i+1)
	}
	return strings.Join(locals, luaSeparator) + luaSeparator + src
}

func (e *LuaEnv) compile(src string) (*CompiledLua, error) {
	L := lua.NewState()
	setupSandbox(L)

	if err := lua.LoadString(L, src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLuaLoad, err)
	}

	var buf bytes.Buffer
	if err := L.Dump(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLuaLoad, err)
	}
	return &CompiledLua{bytecode: buf.Bytes()}, nil
}

func setupSandbox(L *lua.State) {
	lua.OpenLibraries(L)
	L.Global(luaGlobalTableName)
	for _, name := range luaExclude {
		L.PushNil()
		L.SetField(luaGlobalTableIndex, name)
	}
	L.Pop(1)
}

func (e *LuaEnv) withCompiledResult(
	proc *CompiledLua, args []any, onResult func(*lua.State) error,
) error {
	L := e.getState()
	defer e.returnState(L)

	setupSandbox(L)
	if err := L.Load(bytes.NewReader(proc.bytecode), "chunk", "b"); err != nil {
		return fmt.Errorf("%w: %w", ErrLuaLoad, err)
	}

	for _, arg := range args {
		goToLua(L, arg)
	}

	if err := L.ProtectedCall(len(args), 1, 0); err != nil {
		return fmt.Errorf("%w: %w", ErrLuaExecution, err)
	}
	return onResult(L)
}

func (e *LuaEnv) getState() *lua.State {
	select {
	case L := <-e.statePool:
		return L
	default:
		return lua.NewState()
	}
}

func (e *LuaEnv) returnState(L *lua.State) {
	L.SetTop(0)

	select {
	case e.statePool <- L:
	default:
	}
}

func goToLua(L *lua.State, value any) {
	switch v := value.(type) {
	case string:
		L.PushString(v)
	case bool:
		L.PushBoolean(v)
	case int:
		L.PushInteger(v)
	case int64:
		L.PushInteger(int(v))
	case float64:
		L.PushNumber(v)
	case []any:
		pushLuaArray(L, v)
	case map[string]any:
		pushLuaMap(L, v)
	case api.Entity:
		pushLuaMap(L, v)
	case nil:
		L.PushNil()
	default:
		L.PushString(fmt.Sprintf("%v", v))
	}
}

func pushLuaArray(L *lua.State, arr []any) {
	L.CreateTable(len(arr), 0)
	for i, item := range arr {
		L.PushInteger(i + 1)
		goToLua(L, item)
		L.SetTable(luaArrayTableIndex)
	}
}

func pushLuaMap(L *lua.State, m map[string]any) {
	L.CreateTable(0, len(m))
	for k, val := range m {
		L.PushString(k)
		goToLua(L, val)
		L.SetTable(luaMapTableIndex)
	}
}

func hashScript(src string) string {
	h := sha256.Sum256([]byte(src))
	return hex.EncodeToString(h[:])
}
