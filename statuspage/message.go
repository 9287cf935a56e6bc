package statuspage

import "net/http"

// StatusMessage returns a short, human-readable description of the given HTTP
// status code.
func StatusMessage(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "Your browser has sent a malformed request."
	case http.StatusMisdirectedRequest:
		return "This server does not serve the host you've requested."
	case http.StatusTooManyRequests:
		return "Too many requests are being made, please try again shortly."
	case http.StatusBadGateway:
		return "The service you've requested could not be contacted, please try again."
	case http.StatusServiceUnavailable:
		return "The service you've requested is temporarily unavailable, please try again."
	case http.StatusGatewayTimeout:
		return "The service you've requested did not respond in a timely manner, please try again."
	}

	if 400 <= statusCode && statusCode <= 599 {
		return "We're sorry, something went wrong!"
	}

	return "That's all we know."
}
