// Package httpclient is the outbound HTTP client used by every external
// backend: the whisper, pyannote and speecht5 sidecars, MyMemory and the
// Supabase REST APIs.
//
// Non-2xx responses are returned as *Error with a classification (rate
// limit, auth, server, ...) so callers can map them to domain errors.
// Retry, circuit breaking and rate limiting from package resilience are
// opt-in per client.
//
//	c, _ := httpclient.New(httpclient.Config{BaseURL: "http://whisper:8000", Timeout: 2 * time.Minute})
//	resp, err := c.Do(ctx, httpclient.Request{
//		Method: http.MethodPost,
//		Path:   "/transcribe",
//		Body:   &httpclient.MultipartBody{Files: []httpclient.FileField{{FieldName: "audio", FileName: "audio.wav", Data: wav}}},
//	})
package httpclient
