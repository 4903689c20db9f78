package admin

import (
	"errors"
	"net/http"
	"ns2po_server/lib"
	"ns2po_server/structs"

	"github.com/MonkyMars/gecho"
)

// Login handles POST /admin/login and returns a bearer token for the
// back-office routes.
func (ar *AdminRoutesManager) Login(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.AuthRequest](r)
	if err != nil {
		ar.logger.Debug("Failed to extract and validate login body", err)
		gecho.BadRequest(w, gecho.WithMessage("Please provide an email and a password"), gecho.Send())
		return
	}

	resp, err := ar.authService.Login(body)
	if err != nil {
		if errors.Is(err, lib.ErrInvalidCredentials) {
			ar.logger.Warn("Failed admin login attempt", gecho.Field("email", body.Email))
			gecho.Unauthorized(w, gecho.WithMessage("Invalid email or password"), gecho.Send())
			return
		}

		ar.logger.Error("Login failed", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to log in. Please try again"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithData(resp),
		gecho.Send(),
	)
}
