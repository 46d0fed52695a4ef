package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/catequesis/internal/app/controllers"
	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/app/repositories/memory"
	"github.com/yigit/catequesis/internal/app/repositories/repotest"
	"github.com/yigit/catequesis/internal/app/services"
	"github.com/yigit/catequesis/internal/middleware"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	pkgauth "github.com/yigit/catequesis/internal/pkg/auth"
	"github.com/yigit/catequesis/internal/pkg/sessionstore"
)

const testPassword = "secreto123"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	pkgauth.BcryptCost = bcrypt.MinCost
	middleware.RegisterValidators()
	os.Exit(m.Run())
}

type testApp struct {
	router *gin.Engine
	db     *memory.DB
	repos  *repositories.Repositories
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, nil)
}

// newTestAppWith lets a test swap repositories before the services are built.
func newTestAppWith(t *testing.T, wrap func(*repositories.Repositories)) *testApp {
	t.Helper()

	database := memory.NewDB()
	repos := memory.NewRepositories(database)
	if wrap != nil {
		wrap(repos)
	}
	svc := services.NewServices(repos, zerolog.Nop())

	codec := pkgauth.NewCookieCodec(pkgauth.CookieConfig{SecretKey: "routes-test", SessionTTL: time.Hour})
	sessions := middleware.NewSessionMiddleware(codec, sessionstore.NewMemoryRegistry(), middleware.SessionConfig{})

	router := gin.New()
	SetupRouter(router, Controllers{
		Auth:     controllers.NewAuthController(svc.Auth, sessions, zerolog.Nop()),
		Students: controllers.NewStudentController(svc.Students, svc.Groups),
		Groups:   controllers.NewGroupController(svc.Groups),
	}, sessions, database)

	return &testApp{router: router, db: database, repos: repos}
}

func (a *testApp) createUser(t *testing.T, username string, role models.Role, linked *uuid.UUID) *models.User {
	t.Helper()
	hash, err := pkgauth.HashPassword(testPassword)
	require.NoError(t, err)

	user := &models.User{
		Username:        username,
		PasswordHash:    hash,
		Role:            role,
		FullName:        "Nombre " + username,
		LinkedStudentID: linked,
	}
	require.NoError(t, a.repos.Users.Create(context.Background(), user))
	return user
}

func (a *testApp) createGroup(t *testing.T, name string, catechistID *uuid.UUID) *models.Group {
	t.Helper()
	group := &models.Group{Name: name, CatechistID: catechistID}
	require.NoError(t, a.repos.Groups.Create(context.Background(), group))
	return group
}

func (a *testApp) createStudent(t *testing.T, nationalID, firstName string, groupID *uuid.UUID) *models.Student {
	t.Helper()
	student := repotest.NewStudent(nationalID, firstName, groupID)
	require.NoError(t, a.repos.Students.Create(context.Background(), student))
	return student
}

// client is a browser stand-in keeping cookies between requests
type client struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) newClient() *client {
	return &client{app: a, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.app.router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, nil)
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return c.do(http.MethodPost, path, form)
}

func (c *client) login(t *testing.T, username string) {
	t.Helper()
	w := c.post("/login", url.Values{"usuario": {username}, "contrasena": {testPassword}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
}

type page struct {
	Page     string             `json:"page"`
	Flashes  []dto.FlashMessage `json:"flashes"`
	Identity *models.Identity   `json:"identity"`
	Data     json.RawMessage    `json:"data"`
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) page {
	t.Helper()
	var p page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p), w.Body.String())
	return p
}

func (c *client) visibleNationalIDs(t *testing.T) []string {
	t.Helper()
	w := c.get("/")
	require.Equal(t, http.StatusOK, w.Code)

	var data dto.StudentListPage
	require.NoError(t, json.Unmarshal(decodePage(t, w).Data, &data))
	ids := make([]string, 0, len(data.Students))
	for _, s := range data.Students {
		ids = append(ids, s.PersonalData.NationalID)
	}
	return ids
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, status int, location string) {
	t.Helper()
	assert.Equal(t, status, w.Code)
	assert.Equal(t, location, w.Header().Get("Location"))
}

func assertFlash(t *testing.T, p page, category dto.FlashCategory, message string) {
	t.Helper()
	assert.Contains(t, p.Flashes, dto.FlashMessage{Category: category, Message: message})
}

func assertErrorFlash(t *testing.T, p page) {
	t.Helper()
	for _, f := range p.Flashes {
		if f.Category == dto.FlashError && f.Message != "" {
			return
		}
	}
	t.Errorf("no error flash in %+v", p.Flashes)
}

func TestUnauthenticatedRequestsRedirectToLogin(t *testing.T) {
	app := newTestApp(t)
	student := app.createStudent(t, "0102030405", "Lucía", nil)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/logout"},
		{http.MethodGet, "/registrar_usuario"},
		{http.MethodGet, "/grupos"},
		{http.MethodGet, "/agregar_grupo"},
		{http.MethodGet, "/agregar_catequizando"},
		{http.MethodGet, "/editar_catequizando/" + student.ID.String()},
		{http.MethodPost, "/eliminar_catequizando/" + student.ID.String()},
		{http.MethodPost, "/agregar_grupo"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			c := app.newClient()
			var w *httptest.ResponseRecorder
			if tc.method == http.MethodPost {
				w = c.post(tc.path, url.Values{"nombre": {"Grupo fantasma"}})
			} else {
				w = c.get(tc.path)
			}
			assertRedirect(t, w, http.StatusFound, "/login")

			p := decodePage(t, c.get("/login"))
			assert.Equal(t, "login", p.Page)
			assertFlash(t, p, dto.FlashWarning, dto.MsgLoginRequired)
		})
	}

	// No handler ran
	_, err := app.repos.Students.GetByID(context.Background(), student.ID)
	assert.NoError(t, err)
	groups, err := app.repos.Groups.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "ana", models.RoleAdmin, nil)

	t.Run("wrong password", func(t *testing.T) {
		c := app.newClient()
		w := c.post("/login", url.Values{"usuario": {"ana"}, "contrasena": {"incorrecta"}})
		assertRedirect(t, w, http.StatusSeeOther, "/login")

		p := decodePage(t, c.get("/login"))
		assertFlash(t, p, dto.FlashError, dto.MsgInvalidCredentials)
		assert.Nil(t, p.Identity)
	})

	t.Run("unknown user gets the same notice", func(t *testing.T) {
		c := app.newClient()
		w := c.post("/login", url.Values{"usuario": {"nadie"}, "contrasena": {testPassword}})
		assertRedirect(t, w, http.StatusSeeOther, "/login")
		assertFlash(t, decodePage(t, c.get("/login")), dto.FlashError, dto.MsgInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		c := app.newClient()
		w := c.post("/login", url.Values{"usuario": {"ana"}})
		assertRedirect(t, w, http.StatusSeeOther, "/login")
		p := decodePage(t, c.get("/login"))
		require.Len(t, p.Flashes, 1)
		assert.Equal(t, dto.FlashError, p.Flashes[0].Category)
	})

	t.Run("success", func(t *testing.T) {
		c := app.newClient()
		c.login(t, "ana")

		p := decodePage(t, c.get("/"))
		assert.Equal(t, "index", p.Page)
		assertFlash(t, p, dto.FlashSuccess, "¡Bienvenido de vuelta, Nombre ana!")
		require.NotNil(t, p.Identity)
		assert.Equal(t, models.RoleAdmin, p.Identity.Role)

		// Flashes are consumed once
		assert.Empty(t, decodePage(t, c.get("/")).Flashes)

		assertRedirect(t, c.get("/login"), http.StatusFound, "/")
	})
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "ana", models.RoleAdmin, nil)

	c := app.newClient()
	c.login(t, "ana")

	assertRedirect(t, c.get("/logout"), http.StatusFound, "/login")
	assertFlash(t, decodePage(t, c.get("/login")), dto.FlashInfo, dto.MsgLoggedOut)
	assertRedirect(t, c.get("/"), http.StatusFound, "/login")
}

func TestSessionReplacedByNewLogin(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "ana", models.RoleAdmin, nil)

	first := app.newClient()
	first.login(t, "ana")
	require.Equal(t, http.StatusOK, first.get("/").Code)

	second := app.newClient()
	second.login(t, "ana")

	assertRedirect(t, first.get("/"), http.StatusFound, "/login")
	assert.Equal(t, http.StatusOK, second.get("/").Code)
}

func TestTamperedSessionCookieIsIgnored(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "ana", models.RoleAdmin, nil)

	c := app.newClient()
	c.login(t, "ana")
	for name, cookie := range c.cookies {
		if name == "catequesis_session" {
			cookie.Value += "x"
		}
	}

	assertRedirect(t, c.get("/"), http.StatusFound, "/login")
}

func TestStudentVisibility(t *testing.T) {
	app := newTestApp(t)
	catechist := app.createUser(t, "carlos", models.RoleCatechist, nil)
	app.createUser(t, "otro", models.RoleCatechist, nil)
	led := app.createGroup(t, "Primera Comunión A", &catechist.ID)
	other := app.createGroup(t, "Confirmación B", nil)

	inLed := app.createStudent(t, "1000000001", "Andrés", &led.ID)
	app.createStudent(t, "1000000002", "Beatriz", &other.ID)
	app.createStudent(t, "1000000003", "Camila", nil)

	app.createUser(t, "ana", models.RoleAdmin, nil)
	app.createUser(t, "linked", models.RoleStudent, &inLed.ID)
	app.createUser(t, "unlinked", models.RoleStudent, nil)

	cases := []struct {
		username string
		expected []string
	}{
		{"ana", []string{"1000000001", "1000000002", "1000000003"}},
		{"carlos", []string{"1000000001"}},
		{"otro", []string{}},
		{"linked", []string{"1000000001"}},
		{"unlinked", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.username, func(t *testing.T) {
			c := app.newClient()
			c.login(t, tc.username)
			assert.ElementsMatch(t, tc.expected, c.visibleNationalIDs(t))
		})
	}
}

func TestNonAdminDeniedAdminRoutes(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "carlos", models.RoleCatechist, nil)
	student := app.createStudent(t, "2000000001", "Diego", nil)

	c := app.newClient()
	c.login(t, "carlos")
	c.get("/") // consume welcome notice

	for _, path := range []string{"/grupos", "/agregar_grupo", "/registrar_usuario", "/agregar_catequizando"} {
		assertRedirect(t, c.get(path), http.StatusFound, "/")
		assertFlash(t, decodePage(t, c.get("/")), dto.FlashError, dto.MsgPermissionDenied)
	}

	assertRedirect(t, c.post("/eliminar_catequizando/"+student.ID.String(), nil), http.StatusFound, "/")
	assertRedirect(t, c.post("/agregar_grupo", url.Values{"nombre": {"Intruso"}}), http.StatusFound, "/")

	_, err := app.repos.Students.GetByID(context.Background(), student.ID)
	assert.NoError(t, err)
	groups, err := app.repos.Groups.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestRegisterUser(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "ana", models.RoleAdmin, nil)
	student := app.createStudent(t, "3000000001", "Elena", nil)

	c := app.newClient()
	c.login(t, "ana")
	c.get("/")

	p := decodePage(t, c.get("/registrar_usuario"))
	assert.Equal(t, "registrar_usuario", p.Page)
	assert.Contains(t, string(p.Data), "catequizando")

	t.Run("links by national id", func(t *testing.T) {
		w := c.post("/registrar_usuario", url.Values{
			"usuario":         {"elena"},
			"contrasena":      {testPassword},
			"rol":             {"catequizando"},
			"nombre_completo": {"Elena Pérez"},
			"cedula_asociada": {"3000000001"},
		})
		assertRedirect(t, w, http.StatusSeeOther, "/")
		assertFlash(t, decodePage(t, c.get("/")), dto.FlashSuccess, "Usuario 'elena' registrado con éxito.")

		user, err := app.repos.Users.GetByUsername(context.Background(), "elena")
		require.NoError(t, err)
		require.NotNil(t, user.LinkedStudentID)
		assert.Equal(t, student.ID, *user.LinkedStudentID)

		linked := app.newClient()
		linked.login(t, "elena")
		assert.Equal(t, []string{"3000000001"}, linked.visibleNationalIDs(t))
	})

	t.Run("unknown national id creates unlinked account with warning", func(t *testing.T) {
		w := c.post("/registrar_usuario", url.Values{
			"usuario":         {"fantasma"},
			"contrasena":      {testPassword},
			"rol":             {"catequizando"},
			"nombre_completo": {"Sin Vínculo"},
			"cedula_asociada": {"9999999999"},
		})
		assertRedirect(t, w, http.StatusSeeOther, "/")
		p := decodePage(t, c.get("/"))
		assertFlash(t, p, dto.FlashWarning, "Cédula '9999999999' no encontrada. El usuario se creó sin vincular.")
		assertFlash(t, p, dto.FlashSuccess, "Usuario 'fantasma' registrado con éxito.")

		user, err := app.repos.Users.GetByUsername(context.Background(), "fantasma")
		require.NoError(t, err)
		assert.Nil(t, user.LinkedStudentID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		w := c.post("/registrar_usuario", url.Values{
			"usuario":         {"ana"},
			"contrasena":      {testPassword},
			"rol":             {"catequista"},
			"nombre_completo": {"Otra Ana"},
		})
		assertRedirect(t, w, http.StatusSeeOther, "/registrar_usuario")
		assertFlash(t, decodePage(t, c.get("/registrar_usuario")), dto.FlashError, "El nombre de usuario 'ana' ya existe.")
	})

	t.Run("invalid role", func(t *testing.T) {
		w := c.post("/registrar_usuario", url.Values{
			"usuario":         {"root"},
			"contrasena":      {testPassword},
			"rol":             {"superusuario"},
			"nombre_completo": {"Root"},
		})
		assertRedirect(t, w, http.StatusSeeOther, "/registrar_usuario")
		_, err := app.repos.Users.GetByUsername(context.Background(), "root")
		assert.Error(t, err)
	})

	t.Run("password longer than 72 bytes", func(t *testing.T) {
		w := c.post("/registrar_usuario", url.Values{
			"usuario":         {"largo"},
			"contrasena":      {strings.Repeat("a", 80)},
			"rol":             {"catequista"},
			"nombre_completo": {"Clave Larga"},
		})
		assertRedirect(t, w, http.StatusSeeOther, "/registrar_usuario")
		assertErrorFlash(t, decodePage(t, c.get("/registrar_usuario")))

		// 40 characters fit the form limit but encode to 80 bytes
		w = c.post("/registrar_usuario", url.Values{
			"usuario":         {"largo"},
			"contrasena":      {strings.Repeat("ñ", 40)},
			"rol":             {"catequista"},
			"nombre_completo": {"Clave Larga"},
		})
		assertRedirect(t, w, http.StatusSeeOther, "/registrar_usuario")
		assertFlash(t, decodePage(t, c.get("/registrar_usuario")), dto.FlashError, dto.MsgPasswordTooLong)

		_, err := app.repos.Users.GetByUsername(context.Background(), "largo")
		assert.Error(t, err)
	})

	t.Run("blank names", func(t *testing.T) {
		w := c.post("/registrar_usuario", url.Values{
			"usuario":         {"   "},
			"contrasena":      {testPassword},
			"rol":             {"catequista"},
			"nombre_completo": {"   "},
		})
		assertRedirect(t, w, http.StatusSeeOther, "/registrar_usuario")
		assertErrorFlash(t, decodePage(t, c.get("/registrar_usuario")))

		catechists, err := app.repos.Users.ListByRole(context.Background(), models.RoleCatechist)
		require.NoError(t, err)
		assert.Empty(t, catechists)
	})
}

func TestStudentLifecycle(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "ana", models.RoleAdmin, nil)
	group := app.createGroup(t, "Primera Comunión A", nil)

	c := app.newClient()
	c.login(t, "ana")
	c.get("/")

	p := decodePage(t, c.get("/agregar_catequizando"))
	assert.Equal(t, "agregar_catequizando", p.Page)
	assert.Contains(t, string(p.Data), "Primera Comunión A")

	form := url.Values{
		"nombres":          {"Fernando"},
		"apellidos":        {"Gómez"},
		"cedula":           {"4000000001"},
		"fecha_nacimiento": {"2013-05-20"},
		"genero":           {"M"},
		"grupo_id":         {group.ID.String()},
	}
	assertRedirect(t, c.post("/agregar_catequizando", form), http.StatusSeeOther, "/")
	assertFlash(t, decodePage(t, c.get("/")), dto.FlashSuccess, dto.MsgStudentAdded)

	student, err := app.repos.Students.GetByNationalID(context.Background(), "4000000001")
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	require.NotNil(t, student.GroupID)
	assert.Equal(t, group.ID, *student.GroupID)

	t.Run("duplicate national id", func(t *testing.T) {
		assertRedirect(t, c.post("/agregar_catequizando", form), http.StatusSeeOther, "/agregar_catequizando")
		assertFlash(t, decodePage(t, c.get("/agregar_catequizando")), dto.FlashError, "La cédula '4000000001' ya está registrada.")
	})

	t.Run("bad date", func(t *testing.T) {
		bad := url.Values{
			"nombres":          {"Gabriela"},
			"apellidos":        {"Gómez"},
			"cedula":           {"4000000002"},
			"fecha_nacimiento": {"20/05/2013"},
		}
		assertRedirect(t, c.post("/agregar_catequizando", bad), http.StatusSeeOther, "/agregar_catequizando")
		_, err := app.repos.Students.GetByNationalID(context.Background(), "4000000002")
		assert.Error(t, err)
	})

	t.Run("blank names", func(t *testing.T) {
		blank := url.Values{
			"nombres":          {"   "},
			"apellidos":        {"   "},
			"cedula":           {"4000000003"},
			"fecha_nacimiento": {"2013-05-20"},
		}
		assertRedirect(t, c.post("/agregar_catequizando", blank), http.StatusSeeOther, "/agregar_catequizando")
		assertErrorFlash(t, decodePage(t, c.get("/agregar_catequizando")))
		_, err := app.repos.Students.GetByNationalID(context.Background(), "4000000003")
		assert.Error(t, err)
	})

	editPath := "/editar_catequizando/" + student.ID.String()

	t.Run("edit", func(t *testing.T) {
		p := decodePage(t, c.get(editPath))
		assert.Equal(t, "editar_catequizando", p.Page)
		assert.Contains(t, string(p.Data), "4000000001")

		edit := url.Values{
			"nombres":          {"Fernando José"},
			"apellidos":        {"Gómez"},
			"cedula":           {"4000000001"},
			"fecha_nacimiento": {"2013-05-21"},
			"estado":           {"Inactivo"},
		}
		assertRedirect(t, c.post(editPath, edit), http.StatusSeeOther, "/")
		assertFlash(t, decodePage(t, c.get("/")), dto.FlashSuccess, dto.MsgStudentUpdated)

		updated, err := app.repos.Students.GetByID(context.Background(), student.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fernando José", updated.PersonalData.FirstName)
		assert.Equal(t, "Inactivo", updated.Status)
		assert.Nil(t, updated.GroupID)
	})

	t.Run("edit unknown", func(t *testing.T) {
		assertRedirect(t, c.get("/editar_catequizando/"+uuid.NewString()), http.StatusSeeOther, "/")
		assertFlash(t, decodePage(t, c.get("/")), dto.FlashError, dto.MsgStudentNotFound)

		assertRedirect(t, c.get("/editar_catequizando/no-es-un-id"), http.StatusSeeOther, "/")
		assertFlash(t, decodePage(t, c.get("/")), dto.FlashError, dto.MsgInvalidID)
	})

	t.Run("delete cascades to linked users", func(t *testing.T) {
		app.createUser(t, "fernando", models.RoleStudent, &student.ID)
		app.createUser(t, "fernando2", models.RoleStudent, &student.ID)

		assertRedirect(t, c.post("/eliminar_catequizando/"+student.ID.String(), nil), http.StatusSeeOther, "/")
		assertFlash(t, decodePage(t, c.get("/")), dto.FlashSuccess, dto.MsgStudentDeleted)

		_, err := app.repos.Students.GetByID(context.Background(), student.ID)
		assert.Error(t, err)
		for _, username := range []string{"fernando", "fernando2"} {
			_, err := app.repos.Users.GetByUsername(context.Background(), username)
			assert.Error(t, err, username)
		}
		_, err = app.repos.Users.GetByUsername(context.Background(), "ana")
		assert.NoError(t, err)

		assertRedirect(t, c.post("/eliminar_catequizando/"+student.ID.String(), nil), http.StatusSeeOther, "/")
		assertFlash(t, decodePage(t, c.get("/")), dto.FlashError, dto.MsgStudentNotFound)
	})
}

func TestGroups(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "ana", models.RoleAdmin, nil)
	catechist := app.createUser(t, "carlos", models.RoleCatechist, nil)
	student := app.createUser(t, "pupilo", models.RoleStudent, nil)

	c := app.newClient()
	c.login(t, "ana")
	c.get("/")

	p := decodePage(t, c.get("/agregar_grupo"))
	assert.Equal(t, "agregar_grupo", p.Page)
	var formPage dto.GroupFormPage
	require.NoError(t, json.Unmarshal(p.Data, &formPage))
	require.Len(t, formPage.Catechists, 1)
	assert.Equal(t, catechist.ID, formPage.Catechists[0].ID)

	w := c.post("/agregar_grupo", url.Values{
		"nombre":        {"Confirmación"},
		"descripcion":   {"Sábados 10h"},
		"catequista_id": {catechist.ID.String()},
	})
	assertRedirect(t, w, http.StatusSeeOther, "/grupos")
	assertRedirect(t, c.post("/agregar_grupo", url.Values{"nombre": {"Sin catequista"}}), http.StatusSeeOther, "/grupos")

	assertRedirect(t, c.post("/agregar_grupo", url.Values{
		"nombre":        {"Mal asignado"},
		"catequista_id": {student.ID.String()},
	}), http.StatusSeeOther, "/agregar_grupo")
	assertFlash(t, decodePage(t, c.get("/agregar_grupo")), dto.FlashError, dto.MsgCatechistNotFound)

	assertRedirect(t, c.post("/agregar_grupo", url.Values{"nombre": {"   "}}), http.StatusSeeOther, "/agregar_grupo")
	assertErrorFlash(t, decodePage(t, c.get("/agregar_grupo")))

	p = decodePage(t, c.get("/grupos"))
	assert.Equal(t, "grupos", p.Page)
	var list dto.GroupListPage
	require.NoError(t, json.Unmarshal(p.Data, &list))
	require.Len(t, list.Groups, 2)

	byName := map[string]*models.Group{}
	for _, g := range list.Groups {
		byName[g.Name] = g
	}
	require.NotNil(t, byName["Confirmación"].Catechist)
	assert.Equal(t, "Nombre carlos", byName["Confirmación"].Catechist.FullName)
	assert.Nil(t, byName["Sin catequista"].Catechist)
}

func TestStorageUnavailable(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "ana", models.RoleAdmin, nil)

	c := app.newClient()
	c.login(t, "ana")
	c.get("/")

	app.db.SetAvailable(false)

	w := c.get("/")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assertFlash(t, decodePage(t, w), dto.FlashError, dto.MsgStorageUnavailable)

	w = c.post("/agregar_grupo", url.Values{"nombre": {"Durante la caída"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = app.newClient().post("/login", url.Values{"usuario": {"ana"}, "contrasena": {testPassword}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	app.db.SetAvailable(true)
	assert.Equal(t, http.StatusOK, c.get("/").Code)
}

// failingStudents fails every listing with a non-storage error
type failingStudents struct {
	repositories.StudentRepository
	err error
}

func (f failingStudents) List(context.Context, models.StudentFilter) ([]*models.Student, error) {
	return nil, f.err
}

func TestHomeRendersListingErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.ErrGroupNotFound, http.StatusNotFound},
		{"unexpected", errors.New("listado roto"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestAppWith(t, func(repos *repositories.Repositories) {
				repos.Students = failingStudents{StudentRepository: repos.Students, err: tc.err}
			})
			app.createUser(t, "ana", models.RoleAdmin, nil)

			c := app.newClient()
			w := c.post("/login", url.Values{"usuario": {"ana"}, "contrasena": {testPassword}})
			assertRedirect(t, w, http.StatusSeeOther, "/")

			w = c.get("/")
			assert.Equal(t, tc.status, w.Code)
			assert.Empty(t, w.Header().Get("Location"))
			p := decodePage(t, w)
			assert.Equal(t, middleware.ErrorPage, p.Page)
			assertErrorFlash(t, p)

			// Still logged in
			assert.Equal(t, "registrar_usuario", decodePage(t, c.get("/registrar_usuario")).Page)
		})
	}
}
