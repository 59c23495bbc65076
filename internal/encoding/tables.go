package encoding

// standardEncoding is the Adobe standard Latin encoding.
var standardEncoding = [256]string{
	"", "", "", "", "", "", "", "", // 0x00
	"", "", "", "", "", "", "", "", // 0x08
	"", "", "", "", "", "", "", "", // 0x10
	"", "", "", "", "", "", "", "", // 0x18
	"space", "exclam", "quotedbl", "numbersign", "dollar", "percent", "ampersand", "quoteright", // 0x20
	"parenleft", "parenright", "asterisk", "plus", "comma", "hyphen", "period", "slash", // 0x28
	"zero", "one", "two", "three", "four", "five", "six", "seven", // 0x30
	"eight", "nine", "colon", "semicolon", "less", "equal", "greater", "question", // 0x38
	"at", "A", "B", "C", "D", "E", "F", "G", // 0x40
	"H", "I", "J", "K", "L", "M", "N", "O", // 0x48
	"P", "Q", "R", "S", "T", "U", "V", "W", // 0x50
	"X", "Y", "Z", "bracketleft", "backslash", "bracketright", "asciicircum", "underscore", // 0x58
	"quoteleft", "a", "b", "c", "d", "e", "f", "g", // 0x60
	"h", "i", "j", "k", "l", "m", "n", "o", // 0x68
	"p", "q", "r", "s", "t", "u", "v", "w", // 0x70
	"x", "y", "z", "braceleft", "bar", "braceright", "asciitilde", "", // 0x78
	"", "", "", "", "", "", "", "", // 0x80
	"", "", "", "", "", "", "", "", // 0x88
	"", "", "", "", "", "", "", "", // 0x90
	"", "", "", "", "", "", "", "", // 0x98
	"", "exclamdown", "cent", "sterling", "fraction", "yen", "florin", "section", // 0xa0
	"currency", "quotesingle", "quotedblleft", "guillemotleft", "guilsinglleft", "guilsinglright", "fi", "fl", // 0xa8
	"", "endash", "dagger", "daggerdbl", "periodcentered", "", "paragraph", "bullet", // 0xb0
	"quotesinglbase", "quotedblbase", "quotedblright", "guillemotright", "ellipsis", "perthousand", "", "questiondown", // 0xb8
	"", "grave", "acute", "circumflex", "tilde", "macron", "breve", "dotaccent", // 0xc0
	"dieresis", "", "ring", "cedilla", "", "hungarumlaut", "ogonek", "caron", // 0xc8
	"emdash", "", "", "", "", "", "", "", // 0xd0
	"", "", "", "", "", "", "", "", // 0xd8
	"", "AE", "", "ordfeminine", "", "", "", "", // 0xe0
	"Lslash", "Oslash", "OE", "ordmasculine", "", "", "", "", // 0xe8
	"", "ae", "", "", "", "dotlessi", "", "", // 0xf0
	"lslash", "oslash", "oe", "germandbls", "", "", "", "", // 0xf8
}

// macExpertEncoding covers expert glyphs such as old-style figures and small capitals.
var macExpertEncoding = [256]string{
	"", "", "", "", "", "", "", "", // 0x00
	"", "", "", "", "", "", "", "", // 0x08
	"", "", "", "", "", "", "", "", // 0x10
	"", "", "", "", "", "", "", "", // 0x18
	"space", "exclamsmall", "Hungarumlautsmall", "centoldstyle", "dollaroldstyle", "dollarsuperior", "ampersandsmall", "Acutesmall", // 0x20
	"parenleftsuperior", "parenrightsuperior", "twodotenleader", "onedotenleader", "comma", "hyphen", "period", "fraction", // 0x28
	"zerooldstyle", "oneoldstyle", "twooldstyle", "threeoldstyle", "fouroldstyle", "fiveoldstyle", "sixoldstyle", "sevenoldstyle", // 0x30
	"eightoldstyle", "nineoldstyle", "colon", "semicolon", "", "threequartersemdash", "", "questionsmall", // 0x38
	"", "", "", "", "Ethsmall", "", "", "onequarter", // 0x40
	"onehalf", "threequarters", "oneeighth", "threeeighths", "fiveeighths", "seveneighths", "onethird", "twothirds", // 0x48
	"", "", "", "", "", "", "ff", "fi", // 0x50
	"fl", "ffi", "ffl", "parenleftinferior", "", "parenrightinferior", "Circumflexsmall", "hypheninferior", // 0x58
	"Gravesmall", "Asmall", "Bsmall", "Csmall", "Dsmall", "Esmall", "Fsmall", "Gsmall", // 0x60
	"Hsmall", "Ismall", "Jsmall", "Ksmall", "Lsmall", "Msmall", "Nsmall", "Osmall", // 0x68
	"Psmall", "Qsmall", "Rsmall", "Ssmall", "Tsmall", "Usmall", "Vsmall", "Wsmall", // 0x70
	"Xsmall", "Ysmall", "Zsmall", "colonmonetary", "onefitted", "rupiah", "Tildesmall", "", // 0x78
	"", "asuperior", "centsuperior", "", "", "", "", "Aacutesmall", // 0x80
	"Agravesmall", "Acircumflexsmall", "Adieresissmall", "Atildesmall", "Aringsmall", "Ccedillasmall", "Eacutesmall", "Egravesmall", // 0x88
	"Ecircumflexsmall", "Edieresissmall", "Iacutesmall", "Igravesmall", "Icircumflexsmall", "Idieresissmall", "Ntildesmall", "Oacutesmall", // 0x90
	"Ogravesmall", "Ocircumflexsmall", "Odieresissmall", "Otildesmall", "Uacutesmall", "Ugravesmall", "Ucircumflexsmall", "Udieresissmall", // 0x98
	"", "eightsuperior", "fourinferior", "threeinferior", "sixinferior", "eightinferior", "seveninferior", "Scaronsmall", // 0xa0
	"", "centinferior", "twoinferior", "", "Dieresissmall", "", "Caronsmall", "osuperior", // 0xa8
	"fiveinferior", "", "commainferior", "periodinferior", "Yacutesmall", "", "dollarinferior", "", // 0xb0
	"", "Thornsmall", "", "nineinferior", "zeroinferior", "Zcaronsmall", "AEsmall", "Oslashsmall", // 0xb8
	"questiondownsmall", "oneinferior", "Lslashsmall", "", "", "", "", "", // 0xc0
	"", "Cedillasmall", "", "", "", "", "", "OEsmall", // 0xc8
	"figuredash", "hyphensuperior", "", "", "", "", "exclamdownsmall", "", // 0xd0
	"Ydieresissmall", "", "onesuperior", "twosuperior", "threesuperior", "foursuperior", "fivesuperior", "sixsuperior", // 0xd8
	"sevensuperior", "ninesuperior", "zerosuperior", "", "esuperior", "rsuperior", "tsuperior", "", // 0xe0
	"", "isuperior", "ssuperior", "dsuperior", "", "", "", "", // 0xe8
	"", "lsuperior", "Ogoneksmall", "Brevesmall", "Macronsmall", "bsuperior", "nsuperior", "msuperior", // 0xf0
	"commasuperior", "periodsuperior", "Dotaccentsmall", "Ringsmall", "", "", "", "", // 0xf8
}

// symbolEncoding is the built-in encoding of the Symbol font.
var symbolEncoding = [256]string{
	"", "", "", "", "", "", "", "", // 0x00
	"", "", "", "", "", "", "", "", // 0x08
	"", "", "", "", "", "", "", "", // 0x10
	"", "", "", "", "", "", "", "", // 0x18
	"space", "exclam", "universal", "numbersign", "existential", "percent", "ampersand", "suchthat", // 0x20
	"parenleft", "parenright", "asteriskmath", "plus", "comma", "minus", "period", "slash", // 0x28
	"zero", "one", "two", "three", "four", "five", "six", "seven", // 0x30
	"eight", "nine", "colon", "semicolon", "less", "equal", "greater", "question", // 0x38
	"congruent", "Alpha", "Beta", "Chi", "Delta", "Epsilon", "Phi", "Gamma", // 0x40
	"Eta", "Iota", "theta1", "Kappa", "Lambda", "Mu", "Nu", "Omicron", // 0x48
	"Pi", "Theta", "Rho", "Sigma", "Tau", "Upsilon", "sigma1", "Omega", // 0x50
	"Xi", "Psi", "Zeta", "bracketleft", "therefore", "bracketright", "perpendicular", "underscore", // 0x58
	"radicalex", "alpha", "beta", "chi", "delta", "epsilon", "phi", "gamma", // 0x60
	"eta", "iota", "phi1", "kappa", "lambda", "mu", "nu", "omicron", // 0x68
	"pi", "theta", "rho", "sigma", "tau", "upsilon", "omega1", "omega", // 0x70
	"xi", "psi", "zeta", "braceleft", "bar", "braceright", "similar", "", // 0x78
	"", "", "", "", "", "", "", "", // 0x80
	"", "", "", "", "", "", "", "", // 0x88
	"", "", "", "", "", "", "", "", // 0x90
	"", "", "", "", "", "", "", "", // 0x98
	"Euro", "Upsilon1", "minute", "lessequal", "fraction", "infinity", "florin", "club", // 0xa0
	"diamond", "heart", "spade", "arrowboth", "arrowleft", "arrowup", "arrowright", "arrowdown", // 0xa8
	"degree", "plusminus", "second", "greaterequal", "multiply", "proportional", "partialdiff", "bullet", // 0xb0
	"divide", "notequal", "equivalence", "approxequal", "ellipsis", "arrowvertex", "arrowhorizex", "carriagereturn", // 0xb8
	"aleph", "Ifraktur", "Rfraktur", "weierstrass", "circlemultiply", "circleplus", "emptyset", "intersection", // 0xc0
	"union", "propersuperset", "reflexsuperset", "notsubset", "propersubset", "reflexsubset", "element", "notelement", // 0xc8
	"angle", "gradient", "registerserif", "copyrightserif", "trademarkserif", "product", "radical", "dotmath", // 0xd0
	"logicalnot", "logicaland", "logicalor", "arrowdblboth", "arrowdblleft", "arrowdblup", "arrowdblright", "arrowdbldown", // 0xd8
	"lozenge", "angleleft", "registersans", "copyrightsans", "trademarksans", "summation", "parenlefttp", "parenleftex", // 0xe0
	"parenleftbt", "bracketlefttp", "bracketleftex", "bracketleftbt", "bracelefttp", "braceleftmid", "braceleftbt", "braceex", // 0xe8
	"", "angleright", "integral", "integraltp", "integralex", "integralbt", "parenrighttp", "parenrightex", // 0xf0
	"parenrightbt", "bracketrighttp", "bracketrightex", "bracketrightbt", "bracerighttp", "bracerightmid", "bracerightbt", "", // 0xf8
}
