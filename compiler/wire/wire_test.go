package wire

import (
	"errors"
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"

	"github.com/nanalan/nom/compiler"
)

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, `[["expr",["string","hello"]]]`},
		{`25`, `[["expr",["num","25"]]]`},
		{`3.14`, `[["expr",["num","3.14"]]]`},
		{`-1`, `[["expr",["-",["num","0"],["num","1"]]]]`},
		{`someVariable`, `[["expr",["call",["variable","someVariable"],[]]]]`},
		{`SomeClass`, `[["expr",["call",["class","SomeClass"],[]]]]`},
		{`SOME_CONSTANT`, `[["expr",["call",["constant","SOME_CONSTANT"],[]]]]`},
		{`a.b.c.d`, `[["expr",["call",[["variable","a"],["variable","b"],["variable","c"],["variable","d"]],[]]]]`},
		{`{}`, `[["expr",["block",[]]]]`},
		{"{\n  pls\n  work\n}", `[["expr",["block",[["expr",["call",["variable","pls"],[]]],["expr",["call",["variable","work"],[]]]]]]]`},
		{`method () {}`, `[["methodDef",["variable","method"],[],["block",[]]]]`},
		{`method (arg1, arg2) {}`, `[["methodDef",["variable","method"],[["variable","arg1"],["variable","arg2"]],["block",[]]]]`},
		{`bar 6 ^2`, `[["expr",["^",["call",["variable","bar"],[["expr",["num","6"]]]],["num","2"]]]]`},
		{`baz 1, 2`, `[["expr",["call",["variable","baz"],[["expr",["num","1"]],["expr",["num","2"]]]]]]`},
		{`2(4 + 8)`, `[["expr",["*",["num","2"],["+",["num","4"],["num","8"]]]]]`},
		{`(18 + 2) * 4 / 6.2`, `[["expr",["/",["*",["+",["num","18"],["num","2"]],["num","4"]],["num","6.2"]]]]`},
		{``, `[]`},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			stmts, err := compiler.ParseStatements(tc.input)
			require.NoError(t, err)

			got, err := MarshalJSON(stmts)
			require.NoError(t, err)
			require.Equal(t, tc.want, string(got))
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	inputs := []string{
		`"hello"`,
		`a.b.c foo`,
		"square (x) {\n  x * x\n}\nprint square 4",
		`max 1 + 2, 3 * 4`,
		`each { x }`,
		`-2^2`,
		`Point 1, 2`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			stmts, err := compiler.ParseStatements(input)
			require.NoError(t, err)

			data, err := MarshalJSON(stmts)
			require.NoError(t, err)

			back, err := UnmarshalJSON(data)
			require.NoError(t, err)

			t.Log(pretty.Sprint(back))
			require.Equal(t, stmts, back)
		})
	}
}

func TestCBORRoundTrip(t *testing.T) {
	stmts, err := compiler.ParseStatements("greet (name) {\n  print \"hi \", name\n}\ngreet 'nom'\na.b 1")
	require.NoError(t, err)

	data, err := MarshalCBOR(stmts)
	require.NoError(t, err)

	again, err := MarshalCBOR(stmts)
	require.NoError(t, err)
	require.Equal(t, data, again, "canonical encoding must be deterministic")

	back, err := UnmarshalCBOR(data)
	require.NoError(t, err)
	require.Equal(t, stmts, back)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not a list", `{"type":"expr"}`},
		{"statement not a list", `["expr"]`},
		{"unknown statement tag", `[["call",["variable","a"],[]]]`},
		{"empty node", `[["expr",[]]]`},
		{"unknown expression tag", `[["expr",["lambda","x"]]]`},
		{"wrong arity", `[["expr",["num","1","2"]]]`},
		{"number payload not a string", `[["expr",["num",1]]]`},
		{"binary arity", `[["expr",["+",["num","1"]]]]`},
		{"callee is a literal", `[["expr",["call",["num","1"],[]]]]`},
		{"argument not an expr statement", `[["expr",["call",["variable","f"],[["num","1"]]]]]`},
		{"class path segment", `[["expr",["call",[["variable","a"],["class","B"]],[]]]]`},
		{"method name class", `[["methodDef",["class","M"],[],["block",[]]]]`},
		{"method body not a block", `[["methodDef",["variable","m"],[],["expr",["num","1"]]]]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UnmarshalJSON([]byte(tc.in))
			require.Error(t, err)

			var structErr *compiler.StructuralError
			require.True(t, errors.As(err, &structErr), "got %T: %v", err, err)
			require.Equal(t, "WIRE ERROR", structErr.Type)
		})
	}
}

func TestUnmarshalInvalidData(t *testing.T) {
	_, err := UnmarshalJSON([]byte(`[`))
	require.Error(t, err)

	_, err = UnmarshalCBOR([]byte{0xff, 0x00})
	require.Error(t, err)
}

func TestEncodeNodeEmptyLists(t *testing.T) {
	got := EncodeNode(&compiler.Call{Callee: compiler.NewVariable("f")})
	require.Equal(t, []any{"call", []any{"variable", "f"}, []any{}}, got)
}
