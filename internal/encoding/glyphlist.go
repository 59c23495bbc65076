package encoding

// glyphList maps glyph names to Unicode code points. Names not listed are
// resolved by GlyphText through the uniXXXX and uXXXX[XX] conventions.
var glyphList = map[string]rune{
	"A":                   0x0041,
	"AE":                  0x00C6,
	"AEsmall":             0x1D01,
	"Aacute":              0x00C1,
	"Aacutesmall":         0x00C1,
	"Acircumflex":         0x00C2,
	"Acircumflexsmall":    0x00C2,
	"Acutesmall":          0x00B4,
	"Adieresis":           0x00C4,
	"Adieresissmall":      0x00C4,
	"Agrave":              0x00C0,
	"Agravesmall":         0x00C0,
	"Alpha":               0x0391,
	"Aring":               0x00C5,
	"Aringsmall":          0x00C5,
	"Asmall":              0x1D00,
	"Atilde":              0x00C3,
	"Atildesmall":         0x00C3,
	"B":                   0x0042,
	"Beta":                0x0392,
	"Brevesmall":          0x02D8,
	"Bsmall":              0x0299,
	"C":                   0x0043,
	"Caronsmall":          0x02C7,
	"Ccedilla":            0x00C7,
	"Ccedillasmall":       0x00C7,
	"Cedillasmall":        0x00B8,
	"Chi":                 0x03A7,
	"Circumflexsmall":     0x02C6,
	"Csmall":              0x1D04,
	"D":                   0x0044,
	"Delta":               0x2206,
	"Dieresissmall":       0x00A8,
	"Dotaccentsmall":      0x02D9,
	"Dsmall":              0x1D05,
	"E":                   0x0045,
	"Eacute":              0x00C9,
	"Eacutesmall":         0x00C9,
	"Ecircumflex":         0x00CA,
	"Ecircumflexsmall":    0x00CA,
	"Edieresis":           0x00CB,
	"Edieresissmall":      0x00CB,
	"Egrave":              0x00C8,
	"Egravesmall":         0x00C8,
	"Epsilon":             0x0395,
	"Esmall":              0x1D07,
	"Eta":                 0x0397,
	"Eth":                 0x00D0,
	"Ethsmall":            0x1D06,
	"Euro":                0x20AC,
	"F":                   0x0046,
	"Fsmall":              0x0046,
	"G":                   0x0047,
	"Gamma":               0x0393,
	"Gravesmall":          0x0060,
	"Gsmall":              0x0047,
	"H":                   0x0048,
	"Hsmall":              0x029C,
	"Hungarumlautsmall":   0x02DD,
	"I":                   0x0049,
	"Iacute":              0x00CD,
	"Iacutesmall":         0x00CD,
	"Icircumflex":         0x00CE,
	"Icircumflexsmall":    0x00CE,
	"Idieresis":           0x00CF,
	"Idieresissmall":      0x00CF,
	"Ifraktur":            0x2111,
	"Igrave":              0x00CC,
	"Igravesmall":         0x00CC,
	"Iota":                0x0399,
	"Ismall":              0x0049,
	"J":                   0x004A,
	"Jsmall":              0x1D0A,
	"K":                   0x004B,
	"Kappa":               0x039A,
	"Ksmall":              0x1D0B,
	"L":                   0x004C,
	"Lambda":              0x039B,
	"Lslash":              0x0141,
	"Lslashsmall":         0x1D0C,
	"Lsmall":              0x029F,
	"M":                   0x004D,
	"Macronsmall":         0x00AF,
	"Msmall":              0x1D0D,
	"Mu":                  0x039C,
	"N":                   0x004E,
	"Nsmall":              0x0274,
	"Ntilde":              0x00D1,
	"Ntildesmall":         0x00D1,
	"Nu":                  0x039D,
	"O":                   0x004F,
	"OE":                  0x0152,
	"OEsmall":             0x0276,
	"Oacute":              0x00D3,
	"Oacutesmall":         0x00D3,
	"Ocircumflex":         0x00D4,
	"Ocircumflexsmall":    0x00D4,
	"Odieresis":           0x00D6,
	"Odieresissmall":      0x00D6,
	"Ogoneksmall":         0x02DB,
	"Ograve":              0x00D2,
	"Ogravesmall":         0x00F2,
	"Omega":               0x2126,
	"Omicron":             0x039F,
	"Oslash":              0x00D8,
	"Oslashsmall":         0x00F8,
	"Osmall":              0x1D0F,
	"Otilde":              0x00D5,
	"Otildesmall":         0x00D5,
	"P":                   0x0050,
	"Phi":                 0x03A6,
	"Pi":                  0x03A0,
	"Psi":                 0x03A8,
	"Psmall":              0x1D18,
	"Q":                   0x0051,
	"Qsmall":              0x0051,
	"R":                   0x0052,
	"Rfraktur":            0x211C,
	"Rho":                 0x03A1,
	"Ringsmall":           0x02DA,
	"Rsmall":              0x0052,
	"S":                   0x0053,
	"Scaron":              0x0160,
	"Scaronsmall":         0x0160,
	"Sigma":               0x03A3,
	"Ssmall":              0x0053,
	"T":                   0x0054,
	"Tau":                 0x03A4,
	"Theta":               0x0398,
	"Thorn":               0x00DE,
	"Thornsmall":          0x00FE,
	"Tildesmall":          0x02DC,
	"Tsmall":              0x1D1B,
	"U":                   0x0055,
	"Uacute":              0x00DA,
	"Uacutesmall":         0x00DA,
	"Ucircumflex":         0x00DB,
	"Ucircumflexsmall":    0x00DB,
	"Udieresis":           0x00DC,
	"Udieresissmall":      0x00DC,
	"Ugrave":              0x00D9,
	"Ugravesmall":         0x00D9,
	"Upsilon":             0x03A5,
	"Upsilon1":            0x03D2,
	"Usmall":              0x1D1C,
	"V":                   0x0056,
	"Vsmall":              0x1D20,
	"W":                   0x0057,
	"Wsmall":              0x1D21,
	"X":                   0x0058,
	"Xi":                  0x039E,
	"Xsmall":              0x0058,
	"Y":                   0x0059,
	"Yacute":              0x00DD,
	"Yacutesmall":         0x00DD,
	"Ydieresis":           0x0178,
	"Ydieresissmall":      0x0178,
	"Ysmall":              0x0059,
	"Z":                   0x005A,
	"Zcaron":              0x017D,
	"Zcaronsmall":         0x017D,
	"Zeta":                0x0396,
	"Zsmall":              0x007A,
	"a":                   0x0061,
	"aacute":              0x00E1,
	"acircumflex":         0x00E2,
	"acute":               0x00B4,
	"adieresis":           0x00E4,
	"ae":                  0x00E6,
	"agrave":              0x00E0,
	"aleph":               0x2135,
	"alpha":               0x03B1,
	"ampersand":           0x0026,
	"ampersandsmall":      0x0026,
	"angle":               0x2220,
	"angleleft":           0x2329,
	"angleright":          0x232A,
	"approxequal":         0x2248,
	"aring":               0x00E5,
	"arrowboth":           0x2194,
	"arrowdblboth":        0x21D4,
	"arrowdbldown":        0x21D3,
	"arrowdblleft":        0x21D0,
	"arrowdblright":       0x21D2,
	"arrowdblup":          0x21D1,
	"arrowdown":           0x2193,
	"arrowhorizex":        0xF8E7,
	"arrowleft":           0x2190,
	"arrowright":          0x2192,
	"arrowup":             0x2191,
	"arrowvertex":         0xF8E6,
	"asciicircum":         0x005E,
	"asciitilde":          0x007E,
	"asterisk":            0x002A,
	"asteriskmath":        0x2217,
	"asuperior":           0x0061,
	"at":                  0x0040,
	"atilde":              0x00E3,
	"b":                   0x0062,
	"backslash":           0x005C,
	"bar":                 0x007C,
	"beta":                0x03B2,
	"braceex":             0xF8F4,
	"braceleft":           0x007B,
	"braceleftbt":         0xF8F3,
	"braceleftmid":        0xF8F2,
	"bracelefttp":         0xF8F1,
	"braceright":          0x007D,
	"bracerightbt":        0xF8FE,
	"bracerightmid":       0xF8FD,
	"bracerighttp":        0xF8FC,
	"bracketleft":         0x005B,
	"bracketleftbt":       0xF8F0,
	"bracketleftex":       0xF8EF,
	"bracketlefttp":       0xF8EE,
	"bracketright":        0x005D,
	"bracketrightbt":      0xF8FB,
	"bracketrightex":      0xF8FA,
	"bracketrighttp":      0xF8F9,
	"breve":               0x02D8,
	"brokenbar":           0x00A6,
	"bsuperior":           0x0062,
	"bullet":              0x2022,
	"c":                   0x0063,
	"caron":               0x02C7,
	"carriagereturn":      0x21B5,
	"ccedilla":            0x00E7,
	"cedilla":             0x00B8,
	"cent":                0x00A2,
	"centinferior":        0x00A2,
	"centoldstyle":        0x00A2,
	"centsuperior":        0x00A2,
	"chi":                 0x03C7,
	"circlemultiply":      0x2297,
	"circleplus":          0x2295,
	"circumflex":          0x02C6,
	"club":                0x2663,
	"colon":               0x003A,
	"colonmonetary":       0x20A1,
	"comma":               0x002C,
	"commainferior":       0x002C,
	"commasuperior":       0x002C,
	"congruent":           0x2245,
	"copyright":           0x00A9,
	"copyrightsans":       0xF8E9,
	"copyrightserif":      0xF6D9,
	"currency":            0x00A4,
	"d":                   0x0064,
	"dagger":              0x2020,
	"daggerdbl":           0x2021,
	"degree":              0x00B0,
	"delta":               0x03B4,
	"diamond":             0x2666,
	"dieresis":            0x00A8,
	"divide":              0x00F7,
	"dollar":              0x0024,
	"dollarinferior":      0x0024,
	"dollaroldstyle":      0x0024,
	"dollarsuperior":      0x0024,
	"dotaccent":           0x02D9,
	"dotlessi":            0x0131,
	"dotmath":             0x22C5,
	"dsuperior":           0x0064,
	"e":                   0x0065,
	"eacute":              0x00E9,
	"ecircumflex":         0x00EA,
	"edieresis":           0x00EB,
	"egrave":              0x00E8,
	"eight":               0x0038,
	"eightinferior":       0x2088,
	"eightoldstyle":       0x0038,
	"eightsuperior":       0x2078,
	"element":             0x2208,
	"ellipsis":            0x2026,
	"emdash":              0x2014,
	"emptyset":            0x2205,
	"endash":              0x2013,
	"epsilon":             0x03B5,
	"equal":               0x003D,
	"equivalence":         0x2261,
	"esuperior":           0x0065,
	"eta":                 0x03B7,
	"eth":                 0x00F0,
	"exclam":              0x0021,
	"exclamdown":          0x00A1,
	"exclamdownsmall":     0x00A1,
	"exclamsmall":         0x0021,
	"existential":         0x2203,
	"f":                   0x0066,
	"ff":                  0xFB00,
	"ffi":                 0xFB03,
	"ffl":                 0xFB04,
	"fi":                  0xFB01,
	"figuredash":          0x2012,
	"five":                0x0035,
	"fiveeighths":         0x215D,
	"fiveinferior":        0x2085,
	"fiveoldstyle":        0x0035,
	"fivesuperior":        0x2075,
	"fl":                  0xFB02,
	"florin":              0x0192,
	"four":                0x0034,
	"fourinferior":        0x2084,
	"fouroldstyle":        0x0034,
	"foursuperior":        0x2074,
	"fraction":            0x2044,
	"g":                   0x0067,
	"gamma":               0x03B3,
	"germandbls":          0x00DF,
	"gradient":            0x2207,
	"grave":               0x0060,
	"greater":             0x003E,
	"greaterequal":        0x2265,
	"guillemotleft":       0x00AB,
	"guillemotright":      0x00BB,
	"guilsinglleft":       0x2039,
	"guilsinglright":      0x203A,
	"h":                   0x0068,
	"heart":               0x2665,
	"hungarumlaut":        0x02DD,
	"hyphen":              0x002D,
	"hypheninferior":      0x002D,
	"hyphensuperior":      0x002D,
	"i":                   0x0069,
	"iacute":              0x00ED,
	"icircumflex":         0x00EE,
	"idieresis":           0x00EF,
	"igrave":              0x00EC,
	"infinity":            0x221E,
	"integral":            0x222B,
	"integralbt":          0x2321,
	"integralex":          0xF8F5,
	"integraltp":          0x2320,
	"intersection":        0x2229,
	"iota":                0x03B9,
	"isuperior":           0x0069,
	"j":                   0x006A,
	"k":                   0x006B,
	"kappa":               0x03BA,
	"l":                   0x006C,
	"lambda":              0x03BB,
	"less":                0x003C,
	"lessequal":           0x2264,
	"logicaland":          0x2227,
	"logicalnot":          0x00AC,
	"logicalor":           0x2228,
	"lozenge":             0x25CA,
	"lslash":              0x0142,
	"lsuperior":           0x006C,
	"m":                   0x006D,
	"macron":              0x00AF,
	"middot":              0x00B7,
	"minus":               0x2212,
	"minute":              0x2032,
	"msuperior":           0x006D,
	"mu":                  0x03BC,
	"multiply":            0x00D7,
	"n":                   0x006E,
	"nbspace":             0x00A0,
	"nine":                0x0039,
	"nineinferior":        0x2089,
	"nineoldstyle":        0x0039,
	"ninesuperior":        0x2079,
	"notelement":          0x2209,
	"notequal":            0x2260,
	"notsubset":           0x2284,
	"nsuperior":           0x207F,
	"ntilde":              0x00F1,
	"nu":                  0x03BD,
	"numbersign":          0x0023,
	"o":                   0x006F,
	"oacute":              0x00F3,
	"ocircumflex":         0x00F4,
	"odieresis":           0x00F6,
	"oe":                  0x0153,
	"ogonek":              0x02DB,
	"ograve":              0x00F2,
	"omega":               0x03C9,
	"omega1":              0x03D6,
	"omicron":             0x03BF,
	"one":                 0x0031,
	"onedotenleader":      0x2024,
	"oneeighth":           0x215B,
	"onefitted":           0x0031,
	"onehalf":             0x00BD,
	"oneinferior":         0x2081,
	"oneoldstyle":         0x0031,
	"onequarter":          0x00BC,
	"onesuperior":         0x00B9,
	"onethird":            0x2153,
	"ordfeminine":         0x00AA,
	"ordmasculine":        0x00BA,
	"oslash":              0x00F8,
	"osuperior":           0x004F,
	"otilde":              0x00F5,
	"p":                   0x0070,
	"paragraph":           0x00B6,
	"parenleft":           0x0028,
	"parenleftbt":         0xF8ED,
	"parenleftex":         0xF8EC,
	"parenleftinferior":   0x208D,
	"parenleftsuperior":   0x207D,
	"parenlefttp":         0xF8EB,
	"parenright":          0x0029,
	"parenrightbt":        0xF8F8,
	"parenrightex":        0xF8F7,
	"parenrightinferior":  0x208E,
	"parenrightsuperior":  0x207E,
	"parenrighttp":        0xF8F6,
	"partialdiff":         0x2202,
	"percent":             0x0025,
	"period":              0x002E,
	"periodcentered":      0x00B7,
	"periodinferior":      0x002E,
	"periodsuperior":      0x002E,
	"perpendicular":       0x22A5,
	"perthousand":         0x2030,
	"phi":                 0x03C6,
	"phi1":                0x03D5,
	"pi":                  0x03C0,
	"plus":                0x002B,
	"plusminus":           0x00B1,
	"product":             0x220F,
	"propersubset":        0x2282,
	"propersuperset":      0x2283,
	"proportional":        0x221D,
	"psi":                 0x03C8,
	"q":                   0x0071,
	"question":            0x003F,
	"questiondown":        0x00BF,
	"questiondownsmall":   0x00BF,
	"questionsmall":       0x003F,
	"quotedbl":            0x0022,
	"quotedblbase":        0x201E,
	"quotedblleft":        0x201C,
	"quotedblright":       0x201D,
	"quoteleft":           0x2018,
	"quoteright":          0x2019,
	"quotesinglbase":      0x201A,
	"quotesingle":         0x0027,
	"r":                   0x0072,
	"radical":             0x221A,
	"radicalex":           0xF8E5,
	"reflexsubset":        0x2286,
	"reflexsuperset":      0x2287,
	"registered":          0x00AE,
	"registersans":        0xF8E8,
	"registerserif":       0xF6DA,
	"rho":                 0x03C1,
	"ring":                0x02DA,
	"rsuperior":           0x0072,
	"rupiah":              0xF6DD,
	"s":                   0x0073,
	"scaron":              0x0161,
	"second":              0x2033,
	"section":             0x00A7,
	"semicolon":           0x003B,
	"seven":               0x0037,
	"seveneighths":        0x215E,
	"seveninferior":       0x2087,
	"sevenoldstyle":       0x0037,
	"sevensuperior":       0x2077,
	"sfthyphen":           0x00AD,
	"sigma":               0x03C3,
	"sigma1":              0x03C2,
	"similar":             0x223C,
	"six":                 0x0036,
	"sixinferior":         0x2086,
	"sixoldstyle":         0x0036,
	"sixsuperior":         0x2076,
	"slash":               0x002F,
	"space":               0x0020,
	"spade":               0x2660,
	"ssuperior":           0x0053,
	"sterling":            0x00A3,
	"suchthat":            0x220B,
	"summation":           0x2211,
	"t":                   0x0074,
	"tau":                 0x03C4,
	"therefore":           0x2234,
	"theta":               0x03B8,
	"theta1":              0x03D1,
	"thorn":               0x00FE,
	"three":               0x0033,
	"threeeighths":        0x215C,
	"threeinferior":       0x2083,
	"threeoldstyle":       0x0033,
	"threequarters":       0x00BE,
	"threequartersemdash": 0x2014,
	"threesuperior":       0x00B3,
	"tilde":               0x02DC,
	"trademark":           0x2122,
	"trademarksans":       0xF8EA,
	"trademarkserif":      0xF6DB,
	"tsuperior":           0x0074,
	"two":                 0x0032,
	"twodotenleader":      0x2025,
	"twoinferior":         0x2082,
	"twooldstyle":         0x0032,
	"twosuperior":         0x00B2,
	"twothirds":           0x2154,
	"u":                   0x0075,
	"uacute":              0x00FA,
	"ucircumflex":         0x00FB,
	"udieresis":           0x00FC,
	"ugrave":              0x00F9,
	"underscore":          0x005F,
	"union":               0x222A,
	"universal":           0x2200,
	"upsilon":             0x03C5,
	"v":                   0x0076,
	"w":                   0x0077,
	"weierstrass":         0x2118,
	"x":                   0x0078,
	"xi":                  0x03BE,
	"y":                   0x0079,
	"yacute":              0x00FD,
	"ydieresis":           0x00FF,
	"yen":                 0x00A5,
	"z":                   0x007A,
	"zcaron":              0x017E,
	"zero":                0x0030,
	"zeroinferior":        0x2080,
	"zerooldstyle":        0x0030,
	"zerosuperior":        0x2070,
	"zeta":                0x03B6,
}
