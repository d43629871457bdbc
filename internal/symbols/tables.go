// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package symbols

// greek maps Greek letter commands to their Unicode code points. \epsilon
// and \phi use the lunate/stroked forms so every variant has its own code
// point.
var greek = map[string]string{
	"alpha":      "α",
	"beta":       "β",
	"gamma":      "γ",
	"delta":      "δ",
	"epsilon":    "ϵ",
	"varepsilon": "ε",
	"zeta":       "ζ",
	"eta":        "η",
	"theta":      "θ",
	"vartheta":   "ϑ",
	"iota":       "ι",
	"kappa":      "κ",
	"varkappa":   "ϰ",
	"lambda":     "λ",
	"mu":         "μ",
	"nu":         "ν",
	"xi":         "ξ",
	"pi":         "π",
	"varpi":      "ϖ",
	"rho":        "ρ",
	"varrho":     "ϱ",
	"sigma":      "σ",
	"varsigma":   "ς",
	"tau":        "τ",
	"upsilon":    "υ",
	"phi":        "ϕ",
	"varphi":     "φ",
	"chi":        "χ",
	"psi":        "ψ",
	"omega":      "ω",
	"Gamma":      "Γ",
	"Delta":      "Δ",
	"Theta":      "Θ",
	"Lambda":     "Λ",
	"Xi":         "Ξ",
	"Pi":         "Π",
	"Sigma":      "Σ",
	"Upsilon":    "Υ",
	"Phi":        "Φ",
	"Psi":        "Ψ",
	"Omega":      "Ω",
}

// operators covers big operators, binary operators, relations and
// miscellaneous symbols.
var operators = map[string]string{
	"sum":        "∑",
	"prod":       "∏",
	"coprod":     "∐",
	"int":        "∫",
	"iint":       "∬",
	"iiint":      "∭",
	"oint":       "∮",
	"bigcup":     "⋃",
	"bigcap":     "⋂",
	"bigoplus":   "⨁",
	"bigotimes":  "⨂",
	"bigvee":     "⋁",
	"bigwedge":   "⋀",
	"infty":      "∞",
	"partial":    "∂",
	"nabla":      "∇",
	"pm":         "±",
	"mp":         "∓",
	"times":      "×",
	"div":        "÷",
	"cdot":       "⋅",
	"ast":        "∗",
	"star":       "⋆",
	"circ":       "∘",
	"bullet":     "∙",
	"oplus":      "⊕",
	"ominus":     "⊖",
	"otimes":     "⊗",
	"odot":       "⊙",
	"leq":        "≤",
	"le":         "≤",
	"geq":        "≥",
	"ge":         "≥",
	"neq":        "≠",
	"ne":         "≠",
	"approx":     "≈",
	"equiv":      "≡",
	"sim":        "∼",
	"simeq":      "≃",
	"cong":       "≅",
	"propto":     "∝",
	"ll":         "≪",
	"gg":         "≫",
	"prec":       "≺",
	"succ":       "≻",
	"preceq":     "⪯",
	"succeq":     "⪰",
	"subset":     "⊂",
	"supset":     "⊃",
	"subseteq":   "⊆",
	"supseteq":   "⊇",
	"subsetneq":  "⊊",
	"in":         "∈",
	"notin":      "∉",
	"ni":         "∋",
	"cup":        "∪",
	"cap":        "∩",
	"setminus":   "∖",
	"emptyset":   "∅",
	"varnothing": "∅",
	"forall":     "∀",
	"exists":     "∃",
	"nexists":    "∄",
	"neg":        "¬",
	"lnot":       "¬",
	"wedge":      "∧",
	"land":       "∧",
	"vee":        "∨",
	"lor":        "∨",
	"perp":       "⊥",
	"parallel":   "∥",
	"mid":        "∣",
	"ldots":      "…",
	"dots":       "…",
	"cdots":      "⋯",
	"vdots":      "⋮",
	"ddots":      "⋱",
	"aleph":      "ℵ",
	"hbar":       "ℏ",
	"ell":        "ℓ",
	"Re":         "ℜ",
	"Im":         "ℑ",
	"wp":         "℘",
	"angle":      "∠",
	"triangle":   "△",
	"dagger":     "†",
	"prime":      "′",
	"langle":     "⟨",
	"rangle":     "⟩",
	"lfloor":     "⌊",
	"rfloor":     "⌋",
	"lceil":      "⌈",
	"rceil":      "⌉",
	"top":        "⊤",
	"bot":        "⊥",
	"vdash":      "⊢",
	"models":     "⊨",
}

// arrows maps arrow commands.
var arrows = map[string]string{
	"rightarrow":      "→",
	"to":              "→",
	"leftarrow":       "←",
	"gets":            "←",
	"leftrightarrow":  "↔",
	"Rightarrow":      "⇒",
	"Leftarrow":       "⇐",
	"Leftrightarrow":  "⇔",
	"implies":         "⟹",
	"impliedby":       "⟸",
	"iff":             "⟺",
	"mapsto":          "↦",
	"longrightarrow":  "⟶",
	"longleftarrow":   "⟵",
	"longmapsto":      "⟼",
	"uparrow":         "↑",
	"downarrow":       "↓",
	"hookrightarrow":  "↪",
	"rightharpoonup":  "⇀",
	"Longrightarrow":  "⟹",
	"Longleftarrow":   "⟸",
	"nearrow":         "↗",
	"searrow":         "↘",
	"rightleftarrows": "⇄",
}

// aliases names the commands that share a code point with another command.
// The reverse direction always emits the canonical command on the right.
var aliases = map[string]string{
	"le":             "leq",
	"ge":             "geq",
	"ne":             "neq",
	"varnothing":     "emptyset",
	"lnot":           "neg",
	"land":           "wedge",
	"lor":            "vee",
	"dots":           "ldots",
	"to":             "rightarrow",
	"gets":           "leftarrow",
	"Longrightarrow": "implies",
	"Longleftarrow":  "impliedby",
	"bot":            "perp",
}

// negated maps the operand of \not to the negated relation.
var negated = map[string]string{
	`\in`:     "∉",
	"=":       "≠",
	`\equiv`:  "≢",
	`\subset`: "⊄",
	`\sim`:    "≁",
	`\leq`:    "≰",
	`\geq`:    "≱",
	`\mid`:    "∤",
	`\exists`: "∄",
}

// alphabets gives, per font command, the first code point of the
// mathematical alphanumeric block for capitals and for lowercase letters
// (0 when the font has no lowercase block), plus the letters that live in
// the Letterlike Symbols block instead.
var alphabets = map[string]struct {
	upper, lower rune
	holes        map[rune]rune
}{
	"mathbb": {0x1D538, 0x1D552, map[rune]rune{
		'C': 'ℂ', 'H': 'ℍ', 'N': 'ℕ', 'P': 'ℙ', 'Q': 'ℚ', 'R': 'ℝ', 'Z': 'ℤ',
	}},
	"mathfrak": {0x1D504, 0x1D51E, map[rune]rune{
		'C': 'ℭ', 'H': 'ℌ', 'I': 'ℑ', 'R': 'ℜ', 'Z': 'ℨ',
	}},
	"mathcal": {0x1D49C, 0, map[rune]rune{
		'B': 'ℬ', 'E': 'ℰ', 'F': 'ℱ', 'H': 'ℋ', 'I': 'ℐ', 'L': 'ℒ', 'M': 'ℳ', 'R': 'ℛ',
	}},
}

// functions are the operator names typeset upright. Typst knows every one
// of them under the same name.
var functions = []string{
	"sin", "cos", "tan", "cot", "sec", "csc",
	"arcsin", "arccos", "arctan",
	"sinh", "cosh", "tanh", "coth",
	"log", "ln", "lg", "exp",
	"lim", "liminf", "limsup", "max", "min", "sup", "inf",
	"det", "dim", "gcd", "deg", "arg", "ker", "Pr", "hom",
}

// accents maps accent commands to Typst accent functions.
var accents = map[string]string{
	"hat":            "hat",
	"widehat":        "hat",
	"tilde":          "tilde",
	"widetilde":      "tilde",
	"bar":            "macron",
	"overline":       "overline",
	"underline":      "underline",
	"dot":            "dot",
	"ddot":           "dot.double",
	"dddot":          "dot.triple",
	"vec":            "arrow",
	"overrightarrow": "arrow",
	"acute":          "acute",
	"grave":          "grave",
	"breve":          "breve",
	"check":          "caron",
}

// accentAliases are accents whose Typst function is shared with a
// canonical command.
var accentAliases = map[string]bool{
	"widehat":        true,
	"widetilde":      true,
	"overrightarrow": true,
}

// fonts maps math font commands to Typst style functions.
var fonts = map[string]string{
	"mathbb":     "bb",
	"mathcal":    "cal",
	"mathscr":    "scr",
	"mathfrak":   "frak",
	"mathbf":     "bold",
	"boldsymbol": "bold",
	"mathrm":     "upright",
	"mathit":     "italic",
	"mathsf":     "sans",
	"mathtt":     "mono",
}

var fontAliases = map[string]bool{
	"boldsymbol": true,
}

// spacing maps spacing commands to Typst spacing names.
var spacing = map[string]string{
	",":     "thin",
	":":     "med",
	";":     "thick",
	"quad":  "quad",
	"qquad": "wide",
}

// sizing lists the delimiter sizing commands.
var sizing = []string{
	"left", "right", "middle",
	"big", "Big", "bigg", "Bigg",
	"bigl", "bigr", "Bigl", "Bigr",
	"biggl", "biggr", "Biggl", "Biggr",
}

// delimiters maps the TeX delimiter that may follow a sizing command to
// its Typst form. "." is the invisible delimiter and has no Typst form.
var delimiters = map[string]string{
	"(":       "(",
	")":       ")",
	"[":       "[",
	"]":       "]",
	`\{`:      `\{`,
	`\}`:      `\}`,
	"|":       "|",
	`\|`:      "‖",
	`\Vert`:   "‖",
	`\lVert`:  "‖",
	`\rVert`:  "‖",
	`\vert`:   "|",
	`\lvert`:  "|",
	`\rvert`:  "|",
	`\langle`: "⟨",
	`\rangle`: "⟩",
	`\lfloor`: "⌊",
	`\rfloor`: "⌋",
	`\lceil`:  "⌈",
	`\rceil`:  "⌉",
	"/":       "/",
	".":       "",
}

// delimiterCanonical is the TeX form a Typst delimiter reverses to.
var delimiterCanonical = map[string]string{
	"(":  "(",
	")":  ")",
	"[":  "[",
	"]":  "]",
	`\{`: `\{`,
	`\}`: `\}`,
	"|":  "|",
	"‖":  `\|`,
	"⟨":  `\langle`,
	"⟩":  `\rangle`,
	"⌊":  `\lfloor`,
	"⌋":  `\rfloor`,
	"⌈":  `\lceil`,
	"⌉":  `\rceil`,
	"/":  "/",
	"":   ".",
}

// silent lists commands that have no Typst rendering. The emitter keeps
// them as provenance markers only.
var silent = []string{
	"nonumber", "notag", "displaystyle", "textstyle", "scriptstyle", "limits", "nolimits",
}

// textCommands render their argument as a quoted Typst string.
var textCommands = map[string]bool{
	"text":   true,
	"textrm": true,
	"mbox":   true,
}
