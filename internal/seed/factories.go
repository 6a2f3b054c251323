package seed

import (
	"fmt"
	"strings"
	"time"

	"puntovuela/internal/catalog"
	"puntovuela/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the shared login password for every seeded user.
const DemoPassword = "VueltaDemo2024!"

// requestTemplates are description openers per help category. Unknown
// categories fall back to a generic line.
var requestTemplates = map[string][]string{
	"whatsapp": {
		"Necesito ayuda para crear un grupo de WhatsApp con mi familia",
		"No consigo enviar fotos por WhatsApp desde mi móvil nuevo",
		"Quiero aprender a hacer videollamadas con mis nietos",
	},
	"cita-previa": {
		"Necesito pedir cita previa en el centro de salud y no sé cómo",
		"Ayuda para solicitar cita en el SEPE por internet",
		"Quiero renovar el DNI y la web me pide certificado digital",
	},
	"correo": {
		"No recuerdo la contraseña de mi correo y necesito recuperarla",
		"Quiero crear una cuenta de correo para recibir notificaciones",
		"Me llegan correos raros y no sé cuáles son de verdad",
	},
	"banca": {
		"Mi banco cerró la oficina y ahora todo es por la aplicación",
		"Necesito ayuda para consultar mi pensión en la app del banco",
	},
}

var genericTemplates = []string{
	"Necesito ayuda con un trámite en el móvil",
	"Tengo un problema con el ordenador y no sé por dónde empezar",
	"Quiero aprender a usar esta aplicación paso a paso",
}

var chatLines = []string{
	"Hola, ¿cuándo te viene bien que nos veamos en el punto?",
	"Puedo mañana por la mañana, sobre las 10",
	"Perfecto, trae el móvil cargado y las contraseñas que tengas",
	"Muchas gracias por la ayuda",
	"De nada, para eso estamos",
}

// Factory builds realistic model instances for seeding.
type Factory struct {
	passwordHash string
}

// NewFactory creates a factory with a randomized generator and a single
// precomputed password hash (bcrypt per-user would dominate seed time).
func NewFactory() *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("seed: hash demo password: %v", err))
	}
	return &Factory{passwordHash: string(hash)}
}

// BuildUser creates a verified user with faker-generated identity. The index
// keeps usernames and emails unique across a run.
func (f *Factory) BuildUser(index int) models.User {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := fmt.Sprintf("%s%d", strings.ToLower(first), index)
	age := gofakeit.Number(18, 85)

	role := models.RoleRequester
	if index%2 == 0 {
		role = models.RoleVolunteer
	}

	return models.User{
		Username:      username,
		Email:         fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Password:      f.passwordHash,
		FullName:      first + " " + last,
		Phone:         gofakeit.Phone(),
		Age:           &age,
		ActiveRole:    &role,
		EmailVerified: true,
		CreatedAt:     f.pastTime(90),
	}
}

// BuildRequest creates a pending help request for the given requester. The
// category and location are drawn from the catalog vocabulary.
func (f *Factory) BuildRequest(requesterID uint, categories []catalog.Category, locations []models.Location, index int) models.HelpRequest {
	category := categories[index%len(categories)]
	location := locations[index%len(locations)]

	templates, ok := requestTemplates[category.ID]
	if !ok {
		templates = genericTemplates
	}
	description := templates[gofakeit.Number(0, len(templates)-1)]

	return models.HelpRequest{
		RequesterID: requesterID,
		Category:    category.ID,
		Description: description,
		LocationID:  location.ID,
		Status:      models.StatusPending,
		CreatedAt:   f.pastTime(30),
	}
}

// BuildThread creates a short alternating conversation between the requester
// and the assigned volunteer.
func (f *Factory) BuildThread(req models.HelpRequest) []models.Message {
	n := gofakeit.Number(2, len(chatLines))
	msgs := make([]models.Message, 0, n)
	base := req.CreatedAt.Add(time.Hour)
	for i := 0; i < n; i++ {
		sender := req.RequesterID
		if i%2 == 1 {
			sender = *req.VolunteerID
		}
		msgs = append(msgs, models.Message{
			RequestID: req.ID,
			SenderID:  sender,
			Content:   chatLines[i],
			CreatedAt: base.Add(time.Duration(i) * 5 * time.Minute),
		})
	}
	return msgs
}

// pastTime returns a timestamp between now and maxDays ago, so seeded data
// looks like organic accumulated history.
func (f *Factory) pastTime(maxDays int) time.Time {
	hours := gofakeit.Number(0, maxDays*24)
	return time.Now().Add(-time.Duration(hours) * time.Hour)
}
