package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"silica/internal/ast"
	"silica/internal/diag"
	"silica/internal/source"
)

func parseSrc(t *testing.T, src string) (*ast.SourceUnit, *diag.Bag) {
	t.Helper()
	files := source.NewFileSet()
	id := files.Add("test.sil", src)
	bag := diag.NewBag()
	unit := ParseSource(id, src, bag)
	require.NotNil(t, unit)
	return unit, bag
}

func firstContract(t *testing.T, unit *ast.SourceUnit) *ast.ContractDef {
	t.Helper()
	for _, item := range unit.Items {
		if c, ok := item.(*ast.ContractDef); ok {
			return c
		}
	}
	t.Fatal("no contract in source unit")
	return nil
}

func TestParseEmptyContract(t *testing.T) {
	unit, bag := parseSrc(t, `contract Empty {
}`)
	assert.False(t, bag.HasErrors(), "should have no parse errors")
	c := firstContract(t, unit)
	assert.Equal(t, "Empty", c.Name.Name)
	assert.Empty(t, c.Parts)
}

func TestParseContractWithBasesAndAnnotation(t *testing.T) {
	unit, bag := parseSrc(t, `@program_id("4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM")
contract Token is Ownable, Pausable {
}`)
	assert.False(t, bag.HasErrors())
	c := firstContract(t, unit)
	assert.Equal(t, "Token", c.Name.Name)
	require.Len(t, c.Bases, 2)
	assert.Equal(t, "Ownable", c.Bases[0].Name)
	assert.Equal(t, "Pausable", c.Bases[1].Name)

	id, ok := c.ProgramID()
	assert.True(t, ok)
	assert.Equal(t, "4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM", id)
}

func TestParseStateVariables(t *testing.T) {
	unit, bag := parseSrc(t, `contract Token {
    uint256 public totalSupply;
    mapping(address => uint256) balances;
    mapping(address => mapping(address => uint256)) allowances;
    uint8 constant DECIMALS = 18;
    address payable treasury;
    bytes32[4] checkpoints;
}`)
	assert.False(t, bag.HasErrors(), bag.Items())
	c := firstContract(t, unit)
	require.Len(t, c.Parts, 6)

	supply := c.Parts[0].(*ast.VariableDef)
	assert.True(t, supply.Public)
	assert.Equal(t, "totalSupply", supply.Name.Name)
	assert.Equal(t, "uint256", supply.Type.(*ast.ElementaryType).Name)

	balances := c.Parts[1].(*ast.VariableDef)
	m := balances.Type.(*ast.MappingType)
	assert.Equal(t, "address", m.Key.(*ast.ElementaryType).Name)
	assert.Equal(t, "uint256", m.Value.(*ast.ElementaryType).Name)

	nested := c.Parts[2].(*ast.VariableDef).Type.(*ast.MappingType)
	_, ok := nested.Value.(*ast.MappingType)
	assert.True(t, ok, "nested mapping value should be a mapping")

	decimals := c.Parts[3].(*ast.VariableDef)
	assert.True(t, decimals.Constant)
	require.NotNil(t, decimals.Init)

	treasury := c.Parts[4].(*ast.VariableDef)
	assert.True(t, treasury.Type.(*ast.ElementaryType).Payable)

	checkpoints := c.Parts[5].(*ast.VariableDef)
	arr := checkpoints.Type.(*ast.ArrayType)
	assert.Equal(t, "bytes32", arr.Elem.(*ast.ElementaryType).Name)
	require.NotNil(t, arr.Length)
}

func TestParseFunctionModifiers(t *testing.T) {
	unit, bag := parseSrc(t, `contract Test {
    function balanceOf(address owner) public view returns (uint256) {
        return 0;
    }
    function deposit() external payable {
    }
    constructor(uint256 supply) {
    }
}`)
	assert.False(t, bag.HasErrors())
	c := firstContract(t, unit)
	require.Len(t, c.Parts, 3)

	balanceOf := c.Parts[0].(*ast.FunctionDef)
	assert.Equal(t, "balanceOf", balanceOf.Name.Name)
	assert.Equal(t, ast.VisPublic, balanceOf.Visibility)
	assert.Equal(t, ast.MutView, balanceOf.Mutability)
	require.Len(t, balanceOf.Params, 1)
	assert.Equal(t, "owner", balanceOf.Params[0].Name.Name)
	require.Len(t, balanceOf.Returns, 1)
	assert.Nil(t, balanceOf.Returns[0].Name, "return slot is unnamed")

	deposit := c.Parts[1].(*ast.FunctionDef)
	assert.Equal(t, ast.VisExternal, deposit.Visibility)
	assert.Equal(t, ast.MutPayable, deposit.Mutability)

	ctor := c.Parts[2].(*ast.FunctionDef)
	assert.True(t, ctor.IsConstructor)
	assert.Nil(t, ctor.Name)
	require.Len(t, ctor.Params, 1)
}

func TestParseStructEnumEvent(t *testing.T) {
	unit, bag := parseSrc(t, `contract Market {
    struct Order {
        address maker;
        uint256 amount;
    }
    enum Side { Buy, Sell }
    event Filled(address indexed maker, uint256 amount);
}`)
	assert.False(t, bag.HasErrors())
	c := firstContract(t, unit)
	require.Len(t, c.Parts, 3)

	order := c.Parts[0].(*ast.StructDef)
	require.Len(t, order.Fields, 2)
	assert.Equal(t, "maker", order.Fields[0].Name.Name)

	side := c.Parts[1].(*ast.EnumDef)
	require.Len(t, side.Values, 2)
	assert.Equal(t, "Sell", side.Values[1].Name)

	filled := c.Parts[2].(*ast.EventDef)
	require.Len(t, filled.Fields, 2)
	assert.True(t, filled.Fields[0].Indexed)
	assert.False(t, filled.Fields[1].Indexed)
}

func TestParseUsingDirectives(t *testing.T) {
	unit, bag := parseSrc(t, `contract Test {
    using SafeMath for uint256;
    using {add as +, neg as -} for Fixed;
}`)
	assert.False(t, bag.HasErrors())
	c := firstContract(t, unit)
	require.Len(t, c.Parts, 2)

	lib := c.Parts[0].(*ast.UsingDef)
	assert.Equal(t, "SafeMath", lib.Library.Name)
	assert.Equal(t, "uint256", lib.Type.(*ast.ElementaryType).Name)

	ops := c.Parts[1].(*ast.UsingDef)
	assert.Nil(t, ops.Library)
	require.Len(t, ops.Operators, 2)
	assert.Equal(t, "add", ops.Operators[0].Function.Name)
	assert.Equal(t, "+", ops.Operators[0].Operator)
	assert.Equal(t, "-", ops.Operators[1].Operator)
}

func TestParseDeclVsExpressionStatements(t *testing.T) {
	unit, bag := parseSrc(t, `contract Test {
    uint256[4] grid;
    function run(uint256 i) public {
        uint256 x = 1;
        x = x + 1;
        grid[1] = x;
        uint256[] memoryless;
        Point p = Point(1, 2);
    }
    struct Point { uint256 x; uint256 y; }
}`)
	assert.False(t, bag.HasErrors(), bag.Items())
	c := firstContract(t, unit)
	fn := c.Parts[1].(*ast.FunctionDef)
	require.Len(t, fn.Body.Stmts, 5)

	_, ok := fn.Body.Stmts[0].(*ast.DeclStmt)
	assert.True(t, ok, "first statement is a declaration")

	assign := fn.Body.Stmts[1].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
	assert.Equal(t, "=", assign.Op)

	indexed := fn.Body.Stmts[2].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
	_, ok = indexed.Target.(*ast.IndexAccess)
	assert.True(t, ok, "grid[1] assignment target is an index access")

	arrDecl := fn.Body.Stmts[3].(*ast.DeclStmt)
	_, ok = arrDecl.Type.(*ast.ArrayType)
	assert.True(t, ok)

	structDecl := fn.Body.Stmts[4].(*ast.DeclStmt)
	call := structDecl.Init.(*ast.CallExpr)
	assert.Equal(t, "Point", call.Callee.(*ast.IdentExpr).Name)
	assert.Len(t, call.Args, 2)
}

func TestParseOperatorPrecedence(t *testing.T) {
	unit, bag := parseSrc(t, `contract Test {
    function f(uint256 a, uint256 b) public pure returns (uint256) {
        return a + b * 2 ** 3 ** 2;
    }
}`)
	assert.False(t, bag.HasErrors())
	c := firstContract(t, unit)
	fn := c.Parts[0].(*ast.FunctionDef)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	require.Len(t, ret.Values, 1)

	add := ret.Values[0].(*ast.BinaryExpr)
	assert.Equal(t, "+", add.Op)

	mul := add.Right.(*ast.BinaryExpr)
	assert.Equal(t, "*", mul.Op)

	// ** is right associative: 2 ** (3 ** 2).
	outer := mul.Right.(*ast.BinaryExpr)
	assert.Equal(t, "**", outer.Op)
	inner := outer.Right.(*ast.BinaryExpr)
	assert.Equal(t, "**", inner.Op)
	assert.Equal(t, "3", inner.Left.(*ast.NumberLiteral).Text)
}

func TestParseConditionalAndCompoundAssign(t *testing.T) {
	unit, bag := parseSrc(t, `contract Test {
    function f(uint256 a) public {
        a += a > 10 ? 1 : 2;
    }
}`)
	assert.False(t, bag.HasErrors())
	c := firstContract(t, unit)
	fn := c.Parts[0].(*ast.FunctionDef)
	assign := fn.Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
	assert.Equal(t, "+=", assign.Op)
	_, ok := assign.Value.(*ast.Conditional)
	assert.True(t, ok)
}

func TestParseCallShapes(t *testing.T) {
	unit, bag := parseSrc(t, `contract Test {
    function f(IToken token, address to) public {
        token.transfer{value: 1, gas: 50000}(to, 10);
        configure({rate: 5, owner: to});
        IToken other = IToken(new Token(100));
    }
}`)
	assert.False(t, bag.HasErrors(), bag.Items())
	c := firstContract(t, unit)
	fn := c.Parts[0].(*ast.FunctionDef)
	require.Len(t, fn.Body.Stmts, 3)

	withOpts := fn.Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	require.Len(t, withOpts.CallArgs, 2)
	assert.Equal(t, "value", withOpts.CallArgs[0].Name.Name)
	assert.Equal(t, "gas", withOpts.CallArgs[1].Name.Name)
	assert.Len(t, withOpts.Args, 2)
	member := withOpts.Callee.(*ast.MemberAccess)
	assert.Equal(t, "transfer", member.Member.Name)

	named := fn.Body.Stmts[1].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	assert.Empty(t, named.Args)
	require.Len(t, named.NamedArgs, 2)
	assert.Equal(t, "rate", named.NamedArgs[0].Name.Name)

	decl := fn.Body.Stmts[2].(*ast.DeclStmt)
	cast := decl.Init.(*ast.CallExpr)
	inner := cast.Args[0].(*ast.CallExpr)
	newExpr := inner.Callee.(*ast.NewExpr)
	assert.Equal(t, "Token", newExpr.Type.(*ast.UserType).Name.Name)
}

func TestParseControlFlow(t *testing.T) {
	unit, bag := parseSrc(t, `contract Test {
    function f(uint256 n) public {
        for (uint256 i = 0; i < n; i += 1) {
            if (i == 2) {
                continue;
            } else if (i == 3) {
                break;
            }
        }
        while (n > 0) {
            n -= 1;
        }
        do {
            n += 1;
        } while (n < 10);
    }
}`)
	assert.False(t, bag.HasErrors(), bag.Items())
	c := firstContract(t, unit)
	fn := c.Parts[0].(*ast.FunctionDef)
	require.Len(t, fn.Body.Stmts, 3)

	loop := fn.Body.Stmts[0].(*ast.ForStmt)
	_, ok := loop.Init.(*ast.DeclStmt)
	assert.True(t, ok)
	require.NotNil(t, loop.Cond)
	require.NotNil(t, loop.Next)

	ifStmt := loop.Body.Stmts[0].(*ast.IfStmt)
	elseIf, ok := ifStmt.Else.(*ast.IfStmt)
	require.True(t, ok, "else-if chains nest as IfStmt")
	_, ok = elseIf.Then.Stmts[0].(*ast.BreakStmt)
	assert.True(t, ok)

	_, ok = fn.Body.Stmts[1].(*ast.WhileStmt)
	assert.True(t, ok)
	_, ok = fn.Body.Stmts[2].(*ast.DoWhileStmt)
	assert.True(t, ok)
}

func TestParseEmitAndTryCatch(t *testing.T) {
	unit, bag := parseSrc(t, `contract Test {
    event Done(uint256 v);
    function f(IToken token) public {
        emit Done(1);
        try token.transfer(msg.sender, 1) returns (bool ok) {
            emit Done(2);
        } catch Error(string reason) {
            emit Done(3);
        } catch (bytes raw) {
            emit Done(4);
        }
    }
}`)
	assert.False(t, bag.HasErrors(), bag.Items())
	c := firstContract(t, unit)
	fn := c.Parts[1].(*ast.FunctionDef)
	require.Len(t, fn.Body.Stmts, 2)

	emitStmt := fn.Body.Stmts[0].(*ast.EmitStmt)
	assert.Equal(t, "Done", emitStmt.Event.Name)
	assert.Len(t, emitStmt.Args, 1)

	try := fn.Body.Stmts[1].(*ast.TryCatchStmt)
	require.Len(t, try.Returns, 1)
	assert.Equal(t, "ok", try.Returns[0].Name.Name)
	require.Len(t, try.Catches, 2)
	assert.Equal(t, ast.CatchError, try.Catches[0].Kind)
	assert.Equal(t, "reason", try.Catches[0].Param.Name.Name)
	assert.Equal(t, ast.CatchBytes, try.Catches[1].Kind)
}

func TestParseLiterals(t *testing.T) {
	unit, bag := parseSrc(t, `contract Test {
    function f() public {
        uint256 a = 0xff;
        bool b = true;
        string s = "hi\n";
        uint8[] xs = [1, 2, 3];
    }
}`)
	assert.False(t, bag.HasErrors(), bag.Items())
	c := firstContract(t, unit)
	fn := c.Parts[0].(*ast.FunctionDef)

	hex := fn.Body.Stmts[0].(*ast.DeclStmt).Init.(*ast.NumberLiteral)
	assert.Equal(t, "0xff", hex.Text)

	boolean := fn.Body.Stmts[1].(*ast.DeclStmt).Init.(*ast.BoolLiteral)
	assert.True(t, boolean.Value)

	str := fn.Body.Stmts[2].(*ast.DeclStmt).Init.(*ast.StringLiteral)
	assert.Equal(t, "hi\n", str.Value)

	arr := fn.Body.Stmts[3].(*ast.DeclStmt).Init.(*ast.ArrayLiteral)
	assert.Len(t, arr.Elems, 3)
}

func TestParseErrorsRecover(t *testing.T) {
	unit, bag := parseSrc(t, `contract Test {
    uint256 balance
    function ok() public {
    }
}`)
	assert.True(t, bag.HasErrors(), "missing semicolon should be reported")

	c := firstContract(t, unit)
	found := false
	for _, part := range c.Parts {
		if fn, ok := part.(*ast.FunctionDef); ok && fn.Name != nil && fn.Name.Name == "ok" {
			found = true
		}
	}
	assert.True(t, found, "parser should recover and keep later declarations")
}

func TestParseTopLevelItems(t *testing.T) {
	unit, bag := parseSrc(t, `struct Shared { uint256 v; }
enum Phase { Open, Closed }
function helper(uint256 x) pure returns (uint256) {
    return x;
}
contract C {
}`)
	assert.False(t, bag.HasErrors(), bag.Items())
	require.Len(t, unit.Items, 4)
	_, ok := unit.Items[0].(*ast.StructDef)
	assert.True(t, ok)
	_, ok = unit.Items[1].(*ast.EnumDef)
	assert.True(t, ok)
	fn, ok := unit.Items[2].(*ast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, ast.MutPure, fn.Mutability)
	_, ok = unit.Items[3].(*ast.ContractDef)
	assert.True(t, ok)
}
