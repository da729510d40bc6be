// Command libmist builds the C facade over the bridge:
//
//	go build -buildmode=c-shared -o libmist.so ./cmd/libmist
//
// Every exported function returns a MistResult and writes its outputs through
// caller owned pointers. Strings handed out stay valid until the same query
// runs again or the bridge is deinitialized. Calls are serialized by one
// process wide mutex.
package main

func main() {}
