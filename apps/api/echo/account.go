package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/stats"
)

type authApi struct {
	svc  *account.Service
	conf *core.Config
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *account.Service, conf *core.Config) {
	api := authApi{svc: svc, conf: conf}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/google", api.googleLogin)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me, jwt)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data account.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ident, err := api.svc.Authenticate(data)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	if err = api.startSession(ctx, ident); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Message: "login successful", Role: ident.Role})
}

func (api *authApi) googleLogin(ctx echo.Context) error {
	var data GoogleLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GoogleLoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	email, err := verifyGoogleToken(ctx.Request().Context(), data.Credential, api.conf.Google.ClientID)
	if err != nil {
		return err
	}
	ident, err := api.svc.GoogleAuthenticate(email)
	if err != nil {
		return errors.Wrap(err, "authenticating with google")
	}
	if err = api.startSession(ctx, ident); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, GoogleLoginResponse{
		LoginResponse: LoginResponse{Message: "login successful", Role: ident.Role},
		Email:         email,
	})
}

func (api *authApi) startSession(ctx echo.Context, ident account.Identity) error {
	token, err := GenerateToken(GetIdentityClaims(ident, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	setAuthCookie(ctx, token, api.conf)
	return nil
}

func (api *authApi) me(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	profile, err := api.svc.Me(ident)
	if err != nil {
		return errors.Wrap(err, "loading profile")
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (api *authApi) logout(ctx echo.Context) error {
	clearAuthCookie(ctx, api.conf)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

type adminApi struct {
	svc     *account.Service
	examSvc *exam.Service
}

func registerAdminAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *account.Service,
	examSvc *exam.Service,
	statsSvc *stats.Service,
) {
	api := adminApi{svc: svc, examSvc: examSvc}

	ag := g.Group("/admin", jwt, roleMiddleware(account.RoleAdmin))

	ag.POST("/create-teacher", api.createTeacher)
	ag.GET("/teachers", api.queryTeachers)
	ag.PUT("/update-teacher/:id", api.updateTeacher)
	ag.DELETE("/delete-teacher/:id", api.deleteTeacher)

	ag.POST("/create-student", api.createStudent)
	ag.GET("/students", api.queryStudents)
	ag.PUT("/update-student/:id", api.updateStudent)
	ag.DELETE("/delete-student/:id", api.deleteStudent)

	ag.PUT("/reset-password", api.resetPassword)

	ag.GET("/all-results", api.allResults)
	ag.DELETE("/delete-result/:id", api.deleteResult)

	registerStatsAPI(ag, statsSvc)
}

// Handlers

func (api *adminApi) createTeacher(ctx echo.Context) error {
	var data account.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	tch, err := api.svc.CreateTeacher(data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, tch)
}

func (api *adminApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.svc.QueryTeachers()
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *adminApi) updateTeacher(ctx echo.Context) error {
	var data account.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	tch, err := api.svc.UpdateTeacher(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *adminApi) deleteTeacher(ctx echo.Context) error {
	if err := api.svc.DeleteTeacher(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) createStudent(ctx echo.Context) error {
	var data account.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	stu, err := api.svc.CreateStudent(data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, stu)
}

func (api *adminApi) queryStudents(ctx echo.Context) error {
	students, err := api.svc.QueryStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *adminApi) updateStudent(ctx echo.Context) error {
	var data account.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	stu, err := api.svc.UpdateStudent(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *adminApi) deleteStudent(ctx echo.Context) error {
	if err := api.svc.DeleteStudent(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) resetPassword(ctx echo.Context) error {
	var data account.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if err := api.svc.ResetPassword(data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "password has been reset"})
}

func (api *adminApi) allResults(ctx echo.Context) error {
	results, err := api.examSvc.AllResults()
	if err != nil {
		return errors.Wrap(err, "querying all results")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *adminApi) deleteResult(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	if err = api.examSvc.DeleteResult(ident, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting result")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	LoginResponse struct {
		Message string `json:"message"`
		Role    string `json:"role"`
	}

	GoogleLoginResponse struct {
		LoginResponse
		Email string `json:"email"`
	}

	GoogleLoginRequest struct {
		Credential string `json:"credential" validate:"required"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

func (gr *GoogleLoginRequest) Validate() error {
	gr.Credential = core.CleanString(gr.Credential)
	return core.Validate.Struct(gr)
}
