package sema

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"silica/internal/diag"
	"silica/internal/parser"
	"silica/internal/source"
	"silica/internal/target"
)

func analyzeOn(t *testing.T, src string, tgt target.Target) (*Namespace, *diag.Bag) {
	t.Helper()
	files := source.NewFileSet()
	id := files.Add("test.sil", src)
	bag := diag.NewBag()
	unit := parser.ParseSource(id, src, bag)
	require.False(t, bag.HasErrors(), "parse errors: %v", messages(bag))
	ns := Analyze(unit, tgt, bag)
	return ns, bag
}

func analyzeEVM(t *testing.T, src string) (*Namespace, *diag.Bag) {
	t.Helper()
	return analyzeOn(t, src, target.EVM)
}

func messages(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		out = append(out, d.Message)
	}
	return out
}

func hasMessage(bag *diag.Bag, substr string) bool {
	for _, m := range messages(bag) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func contractFunc(t *testing.T, ns *Namespace, contract, name string) *Function {
	t.Helper()
	c := ns.ContractByName(contract)
	require.NotNil(t, c, "contract %s", contract)
	fns := c.FunctionsNamed(name)
	require.NotEmpty(t, fns, "function %s", name)
	return fns[0]
}

func TestOverloadPicksFittingWidthSilently(t *testing.T) {
	ns, bag := analyzeEVM(t, `contract C {
    function f(uint8 x) public returns (uint8) { return x; }
    function f(uint16 x) public returns (uint16) { return x; }
    function g() public returns (uint16) {
        return f(300);
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))
	assert.Zero(t, bag.Len(), "a clean overload pick emits nothing")

	g := contractFunc(t, ns, "C", "g")
	ret := g.Body.Stmts[0].(*Return)
	call := ret.Values[0].(*InternalCall)
	assert.Equal(t, IntegerType{Bits: 16}, call.Fn.Params[0].Type)
}

func TestSingleCandidateReportsItsOwnDiagnostics(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f(uint8 x) public { }
    function g() public { f(300); }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "does not fit in 'uint8'"), messages(bag))
	assert.False(t, hasMessage(bag, "no overload"), "single candidate speaks for itself")
}

func TestNoOverloadMatchesIsGeneric(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f(bool x) public { }
    function f(address x) public { }
    function g() public { f(1); }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "no overload of 'f' matches"), messages(bag))
	assert.False(t, hasMessage(bag, "cannot implicitly convert"),
		"per-candidate diagnostics stay in their scratch lists")
}

func TestAmbiguousOverload(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f(uint8 x) public { }
    function f(int8 x) public { }
    function g() public { f(1); }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "ambiguous"), messages(bag))
}

func TestShadowingWarnsWithNote(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f() public {
        uint256 x = 1;
        if (x > 0) {
            uint256 x = 2;
            x += 1;
        }
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))

	found := false
	for _, d := range bag.Items() {
		if strings.Contains(d.Message, "shadows an outer binding") {
			found = true
			assert.Equal(t, diag.SevWarning, d.Severity)
			require.Len(t, d.Notes, 1)
			assert.Contains(t, d.Notes[0].Message, "shadowed binding")
		}
	}
	assert.True(t, found, messages(bag))
}

func TestRedeclarationInSameScopeIsError(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f() public {
        uint256 x = 1;
        uint256 x = 2;
        x += 1;
    }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "already declared in this scope"), messages(bag))
}

func TestInfiniteLoopMakesTailUnreachable(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f() public {
        while (true) { }
        uint256 x = 1;
    }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "unreachable code"), messages(bag))
}

func TestLoopWithBreakFallsThrough(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f(uint256 n) public returns (uint256) {
        while (true) {
            if (n > 10) {
                break;
            }
            n += 1;
        }
        return n;
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))
}

func TestConditionalLoopDoesNotTerminateFlow(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f(uint256 n) public returns (uint256) {
        while (n > 0) {
            n -= 1;
        }
        return n;
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))
}

func TestRevertTerminatesFlow(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f() public returns (uint256) {
        revert("unsupported");
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))
}

func TestMissingReturnIsReported(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f() public returns (uint256) {
        uint256 x = 1;
        x += 1;
    }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "without returning"), messages(bag))
}

func TestNamedReturnsSynthesizeTrailingReturn(t *testing.T) {
	ns, bag := analyzeEVM(t, `contract C {
    function f() public returns (uint256 total) {
        total = 5;
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))

	f := contractFunc(t, ns, "C", "f")
	require.NotEmpty(t, f.Body.Stmts)
	last, ok := f.Body.Stmts[len(f.Body.Stmts)-1].(*Return)
	require.True(t, ok, "a trailing return is synthesized")
	require.Len(t, last.Values, 1)
	assert.False(t, f.Body.ReachableEnd)
}

func TestCircularConstructionDetectedInEitherOrder(t *testing.T) {
	first := `contract A { function make() public { new B(); } }
contract B { function make() public { new A(); } }`
	second := `contract B { function make() public { new A(); } }
contract A { function make() public { new B(); } }`

	for _, src := range []string{first, second} {
		_, bag := analyzeEVM(t, src)
		assert.True(t, bag.HasErrors(), src)
		assert.True(t, hasMessage(bag, "circular construction"), messages(bag))
	}
}

func TestSelfConstructionRejected(t *testing.T) {
	_, bag := analyzeEVM(t, `contract A {
    function clone() public { new A(); }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "cannot construct itself"), messages(bag))
}

func TestConstructionChainWithoutCycleIsFine(t *testing.T) {
	_, bag := analyzeEVM(t, `contract A { function make() public { new B(); } }
contract B { function make() public { new C(); } }
contract C { }`)
	assert.False(t, bag.HasErrors(), messages(bag))
}

func TestProgramIDRequiredForConstructionOnSVM(t *testing.T) {
	src := `contract Wallet { function spawn() public { new Vault(); } }
contract Vault { }`

	_, bag := analyzeOn(t, src, target.SVM)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "@program_id"), messages(bag))

	_, bag = analyzeOn(t, src, target.EVM)
	assert.False(t, bag.HasErrors(), messages(bag))

	annotated := `contract Wallet { function spawn() public { new Vault(); } }
@program_id("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
contract Vault { }`
	_, bag = analyzeOn(t, annotated, target.SVM)
	assert.False(t, bag.HasErrors(), messages(bag))
}

func TestCallOptionsGatedByTarget(t *testing.T) {
	src := `contract Ledger {
    function credit(address to, uint256 amount) public payable { }
}
contract C {
    function f(Ledger ledger, address to) public {
        ledger.credit{value: 1, gas: 100000}(to, 2);
    }
}`
	_, bag := analyzeOn(t, src, target.EVM)
	assert.False(t, bag.HasErrors(), messages(bag))

	_, bag = analyzeOn(t, src, target.SVM)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "not available on target svm"), messages(bag))
}

func TestValueOptionNeedsPayableCallee(t *testing.T) {
	_, bag := analyzeEVM(t, `contract Ledger {
    function credit(address to, uint256 amount) public { }
}
contract C {
    function f(Ledger ledger, address to) public {
        ledger.credit{value: 1}(to, 2);
    }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "non-payable"), messages(bag))
}

func TestBuiltinValuesGatedByTarget(t *testing.T) {
	src := `contract C {
    function f() public returns (uint256) {
        return msg.value;
    }
}`
	_, bag := analyzeOn(t, src, target.EVM)
	assert.False(t, bag.HasErrors(), messages(bag))

	_, bag = analyzeOn(t, src, target.SVM)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "not available on target svm"), messages(bag))

	accounts := `contract C {
    function f() public returns (uint256) {
        return tx.accounts.length;
    }
}`
	_, bag = analyzeOn(t, accounts, target.SVM)
	assert.False(t, bag.HasErrors(), messages(bag))
	_, bag = analyzeOn(t, accounts, target.EVM)
	assert.True(t, bag.HasErrors())
}

func TestRequireHasTwoShapes(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f(uint256 x) public {
        require(x > 0);
        require(x < 100, "too big");
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))
}

func TestStringEqualityLowersToContentCompare(t *testing.T) {
	ns, bag := analyzeEVM(t, `contract C {
    function eq(string a, string b) public returns (bool) {
        return a == b;
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))

	eq := contractFunc(t, ns, "C", "eq")
	ret := eq.Body.Stmts[0].(*Return)
	_, ok := ret.Values[0].(*StringCompare)
	assert.True(t, ok, "string equality resolves to a content comparison")
}

func TestUserDefinedOperator(t *testing.T) {
	ns, bag := analyzeEVM(t, `struct Fixed { int128 raw; }
function addFixed(Fixed a, Fixed b) pure returns (Fixed) {
    return Fixed(a.raw + b.raw);
}
contract C {
    using {addFixed as +} for Fixed;
    function f(Fixed x, Fixed y) public returns (Fixed) {
        return x + y;
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))

	f := contractFunc(t, ns, "C", "f")
	ret := f.Body.Stmts[0].(*Return)
	call, ok := ret.Values[0].(*OperatorCall)
	require.True(t, ok, "bound operator resolves to a function call")
	assert.Equal(t, "addFixed", call.Fn.Name)
}

func TestLibraryMethodsViaUsing(t *testing.T) {
	_, bag := analyzeEVM(t, `contract MathLib {
    function double(uint256 x) public returns (uint256) { return x * 2; }
}
contract C {
    using MathLib for uint256;
    function f(uint256 n) public returns (uint256) {
        return n.double();
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))
}

func TestUnusedLocalWarningSkipsUnderscore(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f() public {
        uint256 _scratch = 1;
        uint256 dead = 2;
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))

	count := 0
	for _, m := range messages(bag) {
		if strings.Contains(m, "never read") {
			count++
			assert.Contains(t, m, "dead")
		}
	}
	assert.Equal(t, 1, count, messages(bag))
}

func TestEnumMembersAndCasts(t *testing.T) {
	_, bag := analyzeEVM(t, `enum Phase { Open, Closed }
contract C {
    function f() public returns (uint8) {
        Phase p = Phase.Open;
        require(p == Phase.Open);
        return uint8(p);
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))
}

func TestTruncatingCastWarns(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f(uint256 x) public returns (uint8) {
        return uint8(x);
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))
	assert.True(t, hasMessage(bag, "truncate"), messages(bag))
}

func TestImplicitNarrowingRejected(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f(uint256 x) public returns (uint8) {
        return x;
    }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "cannot implicitly convert"), messages(bag))
}

func TestMappingAccessAndCompoundAssign(t *testing.T) {
	ns, bag := analyzeEVM(t, `contract Token {
    mapping(address => uint256) balances;
    function balanceOf(address owner) public view returns (uint256) {
        return balances[owner];
    }
    function mint(address to, uint256 amount) public {
        balances[to] += amount;
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))

	c := ns.ContractByName("Token")
	balances := c.VariableByName("balances")
	require.NotNil(t, balances)
	assert.True(t, balances.Read)
	assert.True(t, balances.Assigned)
}

func TestConstantStateVariableRejectsAssignment(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    uint256 constant LIMIT = 10;
    function f() public { LIMIT = 5; }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "cannot assign to a constant"), messages(bag))
}

func TestEmitChecksEventSignature(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    event Transfer(address indexed from, address indexed to, uint256 value);
    function f(address a, address b) public {
        emit Transfer(a, b, 1);
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))

	_, bag = analyzeEVM(t, `contract C {
    event Transfer(address indexed from, address indexed to, uint256 value);
    function f(address a) public {
        emit Transfer(a, 1);
    }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "3 field(s)"), messages(bag))
}

func TestTryCatchBindingsAndKinds(t *testing.T) {
	_, bag := analyzeEVM(t, `contract Oracle {
    function read() public returns (uint256) { return 1; }
}
contract C {
    function f(Oracle o) public returns (uint256) {
        try o.read() returns (uint256 v) {
            return v;
        } catch Error(string reason) {
            revert(reason);
        } catch (bytes raw) {
            return raw.length;
        }
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))
}

func TestCatchBindingTypeIsChecked(t *testing.T) {
	_, bag := analyzeEVM(t, `contract Oracle {
    function read() public returns (uint256) { return 1; }
}
contract C {
    function f(Oracle o) public {
        try o.read() {
        } catch Error(uint256 code) {
            revert("bad");
        }
    }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "catch binding must be 'string'"), messages(bag))
}

func TestBreakOutsideLoop(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f() public { break; }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "break outside of a loop"), messages(bag))
}

func TestInheritedFunctionsAreCallable(t *testing.T) {
	_, bag := analyzeEVM(t, `contract Base {
    function helper(uint256 x) public returns (uint256) { return x + 1; }
}
contract Child is Base {
    function f() public returns (uint256) {
        return helper(1);
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))
}

func TestMixedSignArithmeticWidens(t *testing.T) {
	ns, bag := analyzeEVM(t, `contract C {
    function f(uint8 a, int8 b) public returns (int16) {
        return a + b;
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))

	f := contractFunc(t, ns, "C", "f")
	ret := f.Body.Stmts[0].(*Return)
	bin := ret.Values[0].(*Binary)
	assert.Equal(t, IntegerType{Bits: 16, Signed: true}, bin.Type())
}

func TestConditionalMixesAddressPayabilities(t *testing.T) {
	ns, bag := analyzeEVM(t, `contract C {
    function pick(bool c, address a) public returns (address) {
        return c ? msg.sender : a;
    }
    function same(address a) public returns (bool) {
        return msg.sender == a;
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))

	// msg.sender is address payable; beside a plain address the pair meets
	// at address, not at the payable side.
	pick := contractFunc(t, ns, "C", "pick")
	ret := pick.Body.Stmts[0].(*Return)
	assert.Equal(t, AddressType{}, Deref(ret.Values[0].Type()))
}

func TestArrayLiteralUnifiesToFirstElement(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    function f() public returns (uint8) {
        uint8[3] xs = [1, 2, 3];
        return xs[0];
    }
}`)
	assert.False(t, bag.HasErrors(), messages(bag))

	_, bag = analyzeEVM(t, `contract C {
    function f() public {
        uint8[2] xs = [1, true];
        xs[0] = 0;
    }
}`)
	assert.True(t, bag.HasErrors(), "bool does not unify with the first element's integer type")
}

func TestNamedArgumentsRejectUnnamedParameters(t *testing.T) {
	_, bag := analyzeEVM(t, `function f(uint8) pure returns (uint8) { return 1; }
contract C {
    function g() public returns (uint8) { return f({x: 1}); }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "parameter needs a name"), messages(bag))
	assert.True(t, hasMessage(bag, "cannot be called with named arguments"), messages(bag))
}

func TestConstructorReturnsReportedWithoutFunctionName(t *testing.T) {
	_, bag := analyzeEVM(t, `contract C {
    constructor() returns (uint8) { }
}`)
	assert.True(t, bag.HasErrors())
	assert.True(t, hasMessage(bag, "constructor cannot declare return values"), messages(bag))
	assert.True(t, hasMessage(bag, "a constructor can reach the end of its body without returning"), messages(bag))
	assert.False(t, hasMessage(bag, "function ''"), messages(bag))
}

func TestResolvingTwiceGivesIdenticalTypedBodies(t *testing.T) {
	src := `contract Ledger {
    mapping(address => uint256) balances;
    event Moved(address who, uint256 amount);

    function credit(address who, uint256 amount) public {
        balances[who] += amount;
        emit Moved(who, amount);
    }

    function busy(uint8 a, int8 b) public returns (int16) {
        int16 total = a + b;
        while (total < 10) {
            total += 1;
        }
        return total;
    }
}`
	files := source.NewFileSet()
	id := files.Add("test.sil", src)
	bag := diag.NewBag()
	unit := parser.ParseSource(id, src, bag)
	require.False(t, bag.HasErrors(), "parse errors: %v", messages(bag))

	firstBag, secondBag := diag.NewBag(), diag.NewBag()
	first := Analyze(unit, target.EVM, firstBag)
	second := Analyze(unit, target.EVM, secondBag)
	assert.Equal(t, messages(firstBag), messages(secondBag))

	for _, name := range []string{"credit", "busy"} {
		a := contractFunc(t, first, "Ledger", name)
		b := contractFunc(t, second, "Ledger", name)
		assert.Equal(t, fingerprintStmt(a.Body), fingerprintStmt(b.Body), name)
	}
}

// fingerprintStmt renders a resolved statement tree as a compact string so
// two resolutions can be compared structurally, independent of slot numbers
// and node identity.
func fingerprintStmt(s Statement) string {
	switch n := s.(type) {
	case *Block:
		parts := make([]string, len(n.Stmts))
		for i, st := range n.Stmts {
			parts[i] = fingerprintStmt(st)
		}
		return fmt.Sprintf("block[reach=%v]{%s}", n.ReachableEnd, strings.Join(parts, " "))
	case *VarDecl:
		return fmt.Sprintf("decl(%s:%s=%s)", n.Local.Name, n.Local.Type.String(), fingerprintExpr(n.Init))
	case *ExprStatement:
		return "expr(" + fingerprintExpr(n.Expr) + ")"
	case *If:
		out := fmt.Sprintf("if(%s)%s", fingerprintExpr(n.Cond), fingerprintStmt(n.Then))
		if n.Else != nil {
			out += "else" + fingerprintStmt(n.Else)
		}
		return out
	case *While:
		return fmt.Sprintf("while[const=%v,breaks=%d](%s)%s",
			n.CondConstTrue, n.Breaks, fingerprintExpr(n.Cond), fingerprintStmt(n.Body))
	case *Return:
		parts := make([]string, len(n.Values))
		for i, v := range n.Values {
			parts[i] = fingerprintExpr(v)
		}
		return "return(" + strings.Join(parts, ",") + ")"
	case *Emit:
		parts := make([]string, len(n.Args))
		for i, v := range n.Args {
			parts[i] = fingerprintExpr(v)
		}
		return fmt.Sprintf("emit %s(%s)", n.Event.Name, strings.Join(parts, ","))
	}
	return fmt.Sprintf("%T", s)
}

func fingerprintExpr(e Expression) string {
	if e == nil {
		return "<nil>"
	}
	ty := Deref(e.Type()).String()
	switch n := e.(type) {
	case *NumberConst:
		return fmt.Sprintf("%s:%s", n.Value.String(), ty)
	case *BoolConst:
		return fmt.Sprintf("%v:%s", n.Value, ty)
	case *StringConst:
		return fmt.Sprintf("%q:%s", n.Value, ty)
	case *LocalRef:
		return fmt.Sprintf("local(%s):%s", n.Local.Name, ty)
	case *StateRef:
		return fmt.Sprintf("state(%s):%s", n.Variable.Name, ty)
	case *MappingIndex:
		return fmt.Sprintf("map(%s[%s]):%s", fingerprintExpr(n.Target), fingerprintExpr(n.Key), ty)
	case *ArrayIndex:
		return fmt.Sprintf("index(%s[%s]):%s", fingerprintExpr(n.Target), fingerprintExpr(n.Index), ty)
	case *Unary:
		return fmt.Sprintf("(%s%s):%s", n.Op, fingerprintExpr(n.Operand), ty)
	case *Binary:
		return fmt.Sprintf("(%s%s%s):%s", fingerprintExpr(n.Left), n.Op, fingerprintExpr(n.Right), ty)
	case *Assign:
		return fmt.Sprintf("(%s%s%s)", fingerprintExpr(n.Target), n.Op, fingerprintExpr(n.Value))
	case *Cast:
		return fmt.Sprintf("cast(%s):%s", fingerprintExpr(n.Value), ty)
	case *InternalCall:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = fingerprintExpr(a)
		}
		return fmt.Sprintf("call %s(%s):%s", n.Fn.Name, strings.Join(parts, ","), ty)
	}
	return fmt.Sprintf("%T:%s", e, ty)
}
