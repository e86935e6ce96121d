// Package builtin provides the functions available in check file
// interpolation.
//
// Available functions:
//   - now(): Current UTC time in RFC 3339
//   - date(layout): Current UTC date, "2006-01-02" by default
//   - timestamp(): Current Unix timestamp
//   - env(name, default): Environment variable with a fallback
//   - lower(s), upper(s), trim(s): String case and whitespace
//   - base64(s), base64Decode(s): Base64 encoding
//   - md5(s), sha256(s): Hex digests
//   - urlEncode(s), urlDecode(s): Query escaping
//
// Functions are invoked using the {{$functionName(args)}} syntax. There are
// no random value functions.
package builtin
