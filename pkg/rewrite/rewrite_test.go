package rewrite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/es6class/pkg/models"
)

func rewrite(t *testing.T, opts Options, src string) *Result {
	t.Helper()
	res, err := New(opts).Rewrite(context.Background(), []byte(src), "test.js")
	require.NoError(t, err)
	return res
}

func TestRewrite_ThreeLevelChain(t *testing.T) {
	src := `var A = defineClass('A', {
    hello: function () {
        return 'a';
    }
});

var B = defineClass('B', {
    __extends: A,
    constructor: function (x) {
        this.__super(x);
        this.x = x;
    },
    y: 1
});

var C = defineClass('C', {
    __extends: B,
    z: 2
});
`
	want := `class A {
    constructor() {
        this.preInit(...arguments);
    }

    preInit() {}

    hello() {
        return 'a';
    }
}

class B extends A {
    preInit(x) {
        super.preInit(x);
        this.y = 1;
        this.x = x;
    }
}

class C extends B {
    preInit() {
        super.preInit(...arguments);
        this.z = 2;
    }
}
`

	res := rewrite(t, DefaultOptions(), src)
	assert.Equal(t, want, string(res.Source))
	assert.True(t, res.Changed)
	require.Len(t, res.Classes, 3)
	for _, c := range res.Classes {
		assert.True(t, c.HasPreInit, c.Name)
	}
	assert.True(t, res.Classes[0].HasConstructor)
	assert.False(t, res.Classes[1].HasConstructor)
}

func TestRewrite_RootWithoutInFileDescendants(t *testing.T) {
	src := `var A = defineClass('A', {
    hello: function () {}
});
`
	res := rewrite(t, DefaultOptions(), src)
	assert.NotContains(t, string(res.Source), "preInit")

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, models.SeverityInfo, res.Diagnostics[0].Severity)
	assert.Equal(t, "A", res.Diagnostics[0].Class)
	assert.Contains(t, res.Diagnostics[0].Message, "anchor_roots")
}

func TestRewrite_AnchorRoots(t *testing.T) {
	src := `var A = defineClass('A', {
    hello: function () {}
});

var B = defineClass('B', {
    __extends: lib.Base
});
`
	opts := DefaultOptions()
	opts.AnchorRoots = true
	res := rewrite(t, opts, src)

	want := `class A {
    constructor() {
        this.preInit(...arguments);
    }

    preInit() {}

    hello() {}
}

class B extends lib.Base {}
`
	assert.Equal(t, want, string(res.Source))
	assert.Empty(t, res.Diagnostics)

	plain := DefaultOptions()
	plain.AnchorRoots = true
	plain.Transform.DeferredInit = false
	res = rewrite(t, plain, src)
	assert.NotContains(t, string(res.Source), "preInit", "plain mode has no initialization method")
}

func TestRewrite_CrossFileParentNotAnchored(t *testing.T) {
	src := `var B = defineClass('B', {
    __extends: lib.Base,
    y: 1
});

var C = defineClass('C', {
    __extends: B,
    z: 2
});
`
	res := rewrite(t, DefaultOptions(), src)
	out := string(res.Source)
	assert.NotContains(t, out, "constructor()")
	assert.Equal(t, 2, strings.Count(out, "super.preInit(...arguments);"))
}

func TestRewrite_AnchorsThroughAssignmentTarget(t *testing.T) {
	src := `app.A = defineClass('app.A', {});
app.B = defineClass('app.B', {
    __extends: app.A,
    b: 1
});
`
	res := rewrite(t, DefaultOptions(), src)
	out := string(res.Source)
	assert.Contains(t, out, "class A {\n    constructor() {\n        this.preInit(...arguments);\n    }\n\n    preInit() {}\n}\napp.A = A;")
	assert.Contains(t, out, "class B extends app.A {")
}

func TestRewrite_Idempotent(t *testing.T) {
	src := `'use strict';

// Views.
var View = Jii.defineClass('app.View', {
    __extends: Jii.base.Object,
    constructor: function (el) {
        this.__super.apply(this, arguments);
        this.el = el;
    },
    render: function () {
        return this.__super();
    }
});

module.exports = View;
`
	r := New(DefaultOptions())
	first, err := r.Rewrite(context.Background(), []byte(src), "view.js")
	require.NoError(t, err)
	require.True(t, first.Changed)

	second, err := r.Rewrite(context.Background(), first.Source, "view.js")
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, models.SkipNoToken, second.Skipped)
	assert.Equal(t, string(first.Source), string(second.Source))
}

func TestRewrite_IdempotentWithRemainingToken(t *testing.T) {
	src := `var defineClass = Jii.defineClass;

var A = defineClass('A', { a: 1 });
`
	r := New(DefaultOptions())
	first, err := r.Rewrite(context.Background(), []byte(src), "a.js")
	require.NoError(t, err)
	require.True(t, first.Changed)

	second, err := r.Rewrite(context.Background(), first.Source, "a.js")
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, models.SkipNoMatch, second.Skipped)
	assert.Equal(t, string(first.Source), string(second.Source))
}

func TestRewrite_PreservesUntouchedBytes(t *testing.T) {
	src := `/* header */
'use strict';
var helper = function () { return 1; }; // keep me

var A = defineClass('A', {
    __static: {
        X: 1
    }
});

helper();
`
	res := rewrite(t, DefaultOptions(), src)
	assert.Equal(t, `/* header */
'use strict';
var helper = function () { return 1; }; // keep me

class A {}
A.X = 1;

helper();
`, string(res.Source))
}

func TestRewrite_NoCandidate(t *testing.T) {
	src := "var a = 1;\n"
	r := New(DefaultOptions())
	assert.False(t, r.HasCandidate([]byte(src)))

	res := rewrite(t, DefaultOptions(), src)
	assert.False(t, res.Changed)
	assert.Equal(t, models.SkipNoToken, res.Skipped)
	assert.Equal(t, src, string(res.Source))
}

func TestRewrite_ShapeMismatchSkipped(t *testing.T) {
	src := "var A = defineClass('A', members);\n"
	res := rewrite(t, DefaultOptions(), src)
	assert.False(t, res.Changed)
	assert.Equal(t, models.SkipNoMatch, res.Skipped)
	assert.Empty(t, res.Diagnostics)
}

func TestRewrite_SpreadMemberSkippedWithDiagnostic(t *testing.T) {
	src := "var A = defineClass('A', { ...mixin, a: 1 });\n"
	res := rewrite(t, DefaultOptions(), src)
	assert.False(t, res.Changed)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, models.SeverityWarning, res.Diagnostics[0].Severity)
}

func TestRewrite_SyntaxErrorInDeclaration(t *testing.T) {
	src := `var A = defineClass('A', {
    run: function () {
        this.x = 1 +;
    }
});
`
	_, err := New(DefaultOptions()).Rewrite(context.Background(), []byte(src), "a.js")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax) || errors.Is(err, ErrParse), err.Error())
}

func TestRewrite_PlainMode(t *testing.T) {
	opts := DefaultOptions()
	opts.Transform.DeferredInit = false

	src := `var A = defineClass('A', {
    a: 1
});

var B = defineClass('B', {
    __extends: A,
    b: 2
});
`
	res := rewrite(t, opts, src)
	assert.Equal(t, `class A {
    constructor() {
        this.a = 1;
    }
}

class B extends A {
    constructor() {
        super(...arguments);
        this.b = 2;
    }
}
`, string(res.Source))
}

func TestRewrite_DetectsIndent(t *testing.T) {
	src := `var A = defineClass('A', {
  run: function () {
    return 1;
  }
});
`
	res := rewrite(t, DefaultOptions(), src)
	assert.Equal(t, `class A {
  run() {
    return 1;
  }
}
`, string(res.Source))

	opts := DefaultOptions()
	opts.Indent = "    "
	res = rewrite(t, opts, src)
	assert.Equal(t, "class A {\n    run() {\n      return 1;\n    }\n}\n", string(res.Source))
}

func TestRewrite_CircularInheritance(t *testing.T) {
	src := `var A = defineClass('A', { __extends: B, a: 1 });
var B = defineClass('B', { __extends: A, b: 1 });
`
	res := rewrite(t, DefaultOptions(), src)
	assert.True(t, res.Changed)

	var warned bool
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, "circular") {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRewrite_TypeScriptGrammar(t *testing.T) {
	src := `export const Store = defineClass('data.Store', {
    items: [],
    add: function (item: string) {
        this.items.push(item);
    }
});
`
	res, err := New(DefaultOptions()).Rewrite(context.Background(), []byte(src), "store.ts")
	require.NoError(t, err)
	out := string(res.Source)
	assert.Contains(t, out, "export class Store {")
	assert.Contains(t, out, "    add(item: string) {")
	assert.Contains(t, out, "this.items = [];")
}

func TestRewrite_AssignmentNameAlreadyDeclared(t *testing.T) {
	src := `var Controller = require('jii/base/Controller');

module.exports = Jii.defineClass('app.controllers.Controller', {
    __extends: Controller,
    __static: {
        ID: 1
    },
    run: function () {
        return this.__super();
    }
});
`
	res := rewrite(t, DefaultOptions(), src)
	out := string(res.Source)

	assert.True(t, strings.HasPrefix(out, "var Controller = require('jii/base/Controller');\n\nmodule.exports = class extends Controller {\n"))
	assert.Contains(t, out, "return super.run();")
	assert.Contains(t, out, "};\nmodule.exports.ID = 1;\n")
	assert.NotContains(t, out, "class Controller")
	assert.NotContains(t, out, "module.exports = Controller;")

	require.Len(t, res.Classes, 1)
	assert.Equal(t, "Controller", res.Classes[0].Name)

	var noted bool
	for _, d := range res.Diagnostics {
		if d.Severity == models.SeverityInfo && strings.Contains(d.Message, "already declared") {
			noted = true
		}
	}
	assert.True(t, noted)
}

func TestRewrite_AssignmentNameCollisions(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    []string
		notWant []string
	}{
		{
			name: "two targets with the same class name",
			src: `a.Foo = defineClass('a.Foo', {});
b.Foo = defineClass('b.Foo', {});
`,
			want:    []string{"class Foo {}\na.Foo = Foo;\n", "b.Foo = class {};\n"},
			notWant: []string{"b.Foo = Foo;"},
		},
		{
			name: "binding declared by another converted class",
			src: `app.View = defineClass('app.View', {});
var View = defineClass('View', {});
`,
			want: []string{"app.View = class {};\n", "class View {}\n"},
		},
		{
			name: "function and import declarations",
			src: `import { Store as Model } from './store';
function Helper() {}
app.Model = defineClass('app.Model', {});
app.Helper = defineClass('app.Helper', {});
`,
			want: []string{"app.Model = class {};\n", "app.Helper = class {};\n"},
		},
		{
			name: "destructured binding",
			src: `const { Base, util: { Mixin } } = lib;
app.Mixin = defineClass('app.Mixin', {});
app.Other = defineClass('app.Other', {});
`,
			want: []string{"app.Mixin = class {};\n", "class Other {}\napp.Other = Other;\n"},
		},
		{
			name: "unrelated names stay named",
			src: `var Other = 1;
app.Foo = defineClass('app.Foo', {});
`,
			want: []string{"class Foo {}\napp.Foo = Foo;\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(rewrite(t, DefaultOptions(), tt.src).Source)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}
