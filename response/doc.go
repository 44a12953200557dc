// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package response interprets the response of one exchange.

A Response reads through to its transport on every call; nothing is
decoded until it is asked for. The body can be read as the raw typed
payload (Result), as decoded JSON (JSON, which also unwraps JSON that
was encoded twice), as text (Text), queried with a gjson path (Get), or
as a parsed document (XML, HTML). Headers parses the raw header block
into a camel-cased mapping:

	content-type: application/json; charset=utf-8

becomes

	Headers{"contentType": "application/json", "encoding": "json", "charset": "utf-8"}
*/
package response
