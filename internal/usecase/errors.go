package usecase

import "errors"

// ErrEngineTimeout: el loop de polling agotó los intentos sin que el run
// termine. El run puede seguir corriendo del lado de OpenAI; el próximo
// mensaje del usuario lo va a detectar antes de encolar uno nuevo.
var ErrEngineTimeout = errors.New("run processing timed out")

// DomainError es un rechazo de negocio: se le explica al usuario y no es
// fatal para la conversación.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError es una falla de infraestructura (base, motor, red). Al
// usuario le llega un mensaje genérico; el detalle va al log.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}
