package extract

// Standard single-byte PDF text encodings (spec §4.6): WinAnsiEncoding and
// MacRomanEncoding map character codes 32-255 to Unicode code points.
// Codes below 32 and any code absent from the table decode as their raw
// byte value, matching Latin-1 for the unmapped low range.

var winAnsiEncoding = map[byte]rune{
	32: ' ', 33: '!', 34: '"', 35: '#', 36: '$', 37: '%', 38: '&', 39: '\'',
	40: '(', 41: ')', 42: '*', 43: '+', 44: ',', 45: '-', 46: '.', 47: '/',
	48: '0', 49: '1', 50: '2', 51: '3', 52: '4', 53: '5', 54: '6', 55: '7',
	56: '8', 57: '9', 58: ':', 59: ';', 60: '<', 61: '=', 62: '>', 63: '?',
	64: '@', 65: 'A', 66: 'B', 67: 'C', 68: 'D', 69: 'E', 70: 'F', 71: 'G',
	72: 'H', 73: 'I', 74: 'J', 75: 'K', 76: 'L', 77: 'M', 78: 'N', 79: 'O',
	80: 'P', 81: 'Q', 82: 'R', 83: 'S', 84: 'T', 85: 'U', 86: 'V', 87: 'W',
	88: 'X', 89: 'Y', 90: 'Z', 91: '[', 92: '\\', 93: ']', 94: '^', 95: '_',
	96: '`', 97: 'a', 98: 'b', 99: 'c', 100: 'd', 101: 'e', 102: 'f', 103: 'g',
	104: 'h', 105: 'i', 106: 'j', 107: 'k', 108: 'l', 109: 'm', 110: 'n', 111: 'o',
	112: 'p', 113: 'q', 114: 'r', 115: 's', 116: 't', 117: 'u', 118: 'v', 119: 'w',
	120: 'x', 121: 'y', 122: 'z', 123: '{', 124: '|', 125: '}', 126: '~',
	128: '€', 130: '‚', 131: 'ƒ', 132: '„', 133: '…',
	134: '†', 135: '‡', 136: 'ˆ', 137: '‰', 138: 'Š',
	139: '‹', 140: 'Œ', 142: 'Ž', 145: '‘', 146: '’',
	147: '“', 148: '”', 149: '•', 150: '–', 151: '—',
	152: '˜', 153: '™', 154: 'š', 155: '›', 156: 'œ',
	158: 'ž', 159: 'Ÿ',
	160: ' ', 161: '¡', 162: '¢', 163: '£', 164: '¤',
	165: '¥', 166: '¦', 167: '§', 168: '¨', 169: '©',
	170: 'ª', 171: '«', 172: '¬', 173: '­', 174: '®',
	175: '¯', 176: '°', 177: '±', 178: '²', 179: '³',
	180: '´', 181: 'µ', 182: '¶', 183: '·', 184: '¸',
	185: '¹', 186: 'º', 187: '»', 188: '¼', 189: '½',
	190: '¾', 191: '¿', 192: 'À', 193: 'Á', 194: 'Â',
	195: 'Ã', 196: 'Ä', 197: 'Å', 198: 'Æ', 199: 'Ç',
	200: 'È', 201: 'É', 202: 'Ê', 203: 'Ë', 204: 'Ì',
	205: 'Í', 206: 'Î', 207: 'Ï', 208: 'Ð', 209: 'Ñ',
	210: 'Ò', 211: 'Ó', 212: 'Ô', 213: 'Õ', 214: 'Ö',
	215: '×', 216: 'Ø', 217: 'Ù', 218: 'Ú', 219: 'Û',
	220: 'Ü', 221: 'Ý', 222: 'Þ', 223: 'ß', 224: 'à',
	225: 'á', 226: 'â', 227: 'ã', 228: 'ä', 229: 'å',
	230: 'æ', 231: 'ç', 232: 'è', 233: 'é', 234: 'ê',
	235: 'ë', 236: 'ì', 237: 'í', 238: 'î', 239: 'ï',
	240: 'ð', 241: 'ñ', 242: 'ò', 243: 'ó', 244: 'ô',
	245: 'õ', 246: 'ö', 247: '÷', 248: 'ø', 249: 'ù',
	250: 'ú', 251: 'û', 252: 'ü', 253: 'ý', 254: 'þ',
	255: 'ÿ',
}

var macRomanEncoding = map[byte]rune{
	128: 'Ä', 129: 'Å', 130: 'Ç', 131: 'É', 132: 'Ñ',
	133: 'Ö', 134: 'Ü', 135: 'á', 136: 'à', 137: 'â',
	138: 'ä', 139: 'ã', 140: 'å', 141: 'ç', 142: 'é',
	143: 'è', 144: 'ê', 145: 'ë', 146: 'í', 147: 'ì',
	148: 'î', 149: 'ï', 150: 'ñ', 151: 'ó', 152: 'ò',
	153: 'ô', 154: 'ö', 155: 'õ', 156: 'ú', 157: 'ù',
	158: 'û', 159: 'ü', 160: '†', 161: '°', 162: '¢',
	163: '£', 164: '§', 165: '•', 166: '¶', 167: 'ß',
	168: '®', 169: '©', 170: '™', 171: '´', 172: '¨',
	174: 'Æ', 175: 'Ø', 177: '±', 180: '¥', 181: 'µ',
	187: 'ª', 188: 'º', 190: 'æ', 191: 'ø', 192: '¿',
	193: '¡', 194: '¬', 196: 'ƒ', 199: '«', 200: '»',
	201: '…', 202: ' ', 203: 'À', 204: 'Ã', 205: 'Õ',
	206: 'Œ', 207: 'œ', 208: '–', 209: '—', 210: '“',
	211: '”', 212: '‘', 213: '’', 214: '÷', 216: 'ÿ',
	217: 'Ÿ', 219: '€', 220: '‹', 221: '›', 224: '‡',
	225: '·', 226: '‚', 227: '„', 228: '‰', 229: 'Â',
	230: 'Ê', 231: 'Á', 232: 'Ë', 233: 'È', 234: 'Í',
	235: 'Î', 236: 'Ï', 237: 'Ì', 238: 'Ó', 239: 'Ô',
	241: 'Ò', 242: 'Ú', 243: 'Û', 244: 'Ù', 246: 'ˆ',
	247: '˜', 253: '˝',
}

// decodeByte maps a single character code to Unicode under the named
// encoding, falling back to treating the code as Latin-1 when the
// encoding has no entry for it (matches ASCII for codes below 128).
func decodeByte(b byte, encoding string) rune {
	table := winAnsiEncoding
	if encoding == "MacRomanEncoding" {
		table = macRomanEncoding
	}
	if r, ok := table[b]; ok {
		return r
	}
	return rune(b)
}

// decodeBytes decodes a content-stream string's already-escape-resolved
// bytes to text under the named encoding.
func decodeBytes(data []byte, encoding string) string {
	out := make([]rune, len(data))
	for i, b := range data {
		out[i] = decodeByte(b, encoding)
	}
	return string(out)
}
