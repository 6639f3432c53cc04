package utils

import (
	"encoding/json"

	"go.uber.org/zap"
)

// UnmarshalAndHandle decodifica el payload al tipo esperado y, si es válido,
// invoca el handler. Un payload malformado se registra y se descarta sin
// tumbar el proceso (ruta de dead-letter simplificada: log + drop); no es un
// fallo reintentable, así que devuelve nil. El error del handler sí se
// propaga para que el adaptador decida sobre el ack.
func UnmarshalAndHandle[T any](log *zap.Logger, data json.RawMessage, handler func(T) error) error {
	var evt T
	if err := json.Unmarshal(data, &evt); err != nil {
		log.Warn("Failed to unmarshal event data", zap.Error(err))
		return nil
	}
	return handler(evt)
}
