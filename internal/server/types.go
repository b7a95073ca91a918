package server

// Response is the JSON body of a successful /calculate request.
type Response struct {
	Library    string `json:"library"`
	Algorithm  string `json:"algorithm"`
	Precision  int    `json:"precision"`
	Iterations int    `json:"iterations"`
	Threads    int    `json:"threads"`
	Workers    int    `json:"workers"`
	// Decimals is the number of decimals matching the reference.
	Decimals int  `json:"decimals"`
	Reached  bool `json:"reached"`
	// Duration is the formatted execution time.
	Duration string  `json:"duration"`
	Seconds  float64 `json:"seconds"`
	// Digits is only filled when the request sets digits=true.
	Digits string `json:"digits,omitempty"`
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	// Error is the HTTP status text.
	Error string `json:"error"`
	// Message describes the failure.
	Message string `json:"message,omitempty"`
}

// AlgorithmInfo describes one catalogued algorithm.
type AlgorithmInfo struct {
	ID     int    `json:"id"`
	Tag    string `json:"tag"`
	Series string `json:"series"`
	Scheme string `json:"scheme"`
}
