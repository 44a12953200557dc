// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transient classifies the errors that end an HTTP exchange so
that a transport can report them under the right event: a timeout, a
cancellation (abort), or a plain network or protocol error.
*/
package transient
