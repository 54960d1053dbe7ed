// Package translate converts transcript text between languages.
//
// Two backends are available: Papago (keyed, Naver client id and secret)
// and Google (the keyless gtx endpoint). Both send exactly one request per
// segment through a retrying HTTP client. Pool fans requests out with a
// bounded number of workers and writes each result back by index, so the
// output slice always lines up with the input.
package translate
