package openai

type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

const AssistantName = "Laura - Asistente de Turnos"

const AssistantModel = "gpt-4o-mini"

// Instrucciones del asistente. El flujo completo lo maneja el motor de
// conversación; acá solo le decimos al modelo qué tools usar y cuándo.
const AssistantInstructions = `Eres Laura, la asistente virtual de la Clínica del Valle.
Tu tarea es ayudar a los interesados en nuestros servicios a agendar un turno.

Proceso de agendamiento:
1. Pide el nombre, correo y teléfono si no los tienes (usa extract_contact_info)
2. Pregunta qué tipo de servicio necesitan (Consulta, Limpieza, Tratamiento)
3. Pide la fecha y hora preferida
4. Valida la fecha y hora usando validate_appointment_date
5. Si la fecha es válida, crea el turno usando create_appointment

Reglas importantes:
1. Responderás según el idioma con el que te hable el cliente
2. Siempre sé amable y profesional
3. Verifica la disponibilidad ANTES de crear el turno
4. Si una fecha no está disponible, sugiere horarios cercanos
5. Horario de atención: Lunes a Viernes de 9:00 a 18:00
6. Duración por defecto de los turnos: 30 minutos

Formato de fechas y horas:
- Fecha: YYYY-MM-DD (ejemplo: 2024-02-01)
- Hora: HH:MM (ejemplo: 14:30)`

// AssistantTools es el vocabulario cerrado de operaciones que el asistente
// puede pedirle al motor. Los nombres tienen que coincidir con los que
// resuelve el dispatcher de tools.
var AssistantTools = []Tool{
	{
		Type: "function",
		Function: FunctionDefinition{
			Name:        "extract_contact_info",
			Description: "Extrae la información de contacto del mensaje del usuario",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Nombre completo del usuario",
					},
					"email": map[string]any{
						"type":        "string",
						"description": "Correo electrónico del usuario",
					},
					"phone": map[string]any{
						"type":        "string",
						"description": "Número de teléfono del usuario (10 dígitos)",
					},
				},
				"required": []string{"name", "email", "phone"},
			},
		},
	},
	{
		Type: "function",
		Function: FunctionDefinition{
			Name:        "create_lead",
			Description: "Crea un lead en la base de datos",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Nombre completo del usuario",
					},
					"email": map[string]any{
						"type":        "string",
						"description": "Correo electrónico del usuario",
					},
					"phone": map[string]any{
						"type":        "string",
						"description": "Número de teléfono del usuario",
					},
				},
				"required": []string{"name", "email", "phone"},
			},
		},
	},
	{
		Type: "function",
		Function: FunctionDefinition{
			Name:        "validate_appointment_date",
			Description: "Valida si una fecha y hora son válidas para un turno",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date": map[string]any{
						"type":        "string",
						"description": "Fecha en formato YYYY-MM-DD",
					},
					"time": map[string]any{
						"type":        "string",
						"description": "Hora en formato HH:MM",
					},
				},
				"required": []string{"date", "time"},
			},
		},
	},
	{
		Type: "function",
		Function: FunctionDefinition{
			Name:        "create_appointment",
			Description: "Crea un nuevo turno en la clínica",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"service_type": map[string]any{
						"type":        "string",
						"description": "Tipo de servicio",
						"enum":        []string{"CONSULTA", "LIMPIEZA", "TRATAMIENTO"},
					},
					"date": map[string]any{
						"type":        "string",
						"description": "Fecha del turno en formato YYYY-MM-DD",
					},
					"time": map[string]any{
						"type":        "string",
						"description": "Hora del turno en formato HH:MM",
					},
					"notes": map[string]any{
						"type":        "string",
						"description": "Notas adicionales para el turno",
					},
				},
				"required": []string{"service_type", "date", "time"},
			},
		},
	},
}
