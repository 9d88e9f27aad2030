package tests

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_userApi_register(t *testing.T) {
	db.Reset()

	testutil.CreateUser(t, usrRepo, "Taken", "taken@test.cd", "", user.RoleStudent, true)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest, body: []byte("{}"),
			wantData: marchallObj(t, map[string]string{
				"name":             reqMsg,
				"email":            reqMsg,
				"password":         reqMsg,
				"password_confirm": reqMsg,
			}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Hero", Email: "lol", Password: "s3cr3t.pwd", PasswordConfirm: "s3cr3t.pwd",
			}),
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "invalid pwd: min len", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Hero", Email: "hero@test.cd", Password: "lol", PasswordConfirm: "lol",
			}),
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
		{
			name: "invalid pwd: all numeric", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Hero", Email: "hero@test.cd", Password: "12345678", PasswordConfirm: "12345678",
			}),
			wantData: marchallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name: "invalid pwd: whitespace", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Hero", Email: "hero@test.cd", Password: "s3cr3t pwd", PasswordConfirm: "s3cr3t pwd",
			}),
			wantData: marchallObj(t, map[string]string{"password": "password must not contain whitespace"}),
		},
		{
			name: "invalid pwd: too similar to email", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Hero", Email: "hero@test.cd", Password: "hero@test.cd", PasswordConfirm: "hero@test.cd",
			}),
			wantData: marchallObj(t, map[string]string{"password": "password cannot be similar to user attributes"}),
		},
		{
			name: "pwd confirmation mismatch", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Hero", Email: "hero@test.cd", Password: "s3cr3t.pwd", PasswordConfirm: "s3cr3t.pdw",
			}),
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "invalid role", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Hero", Email: "hero@test.cd", Password: "s3cr3t.pwd", PasswordConfirm: "s3cr3t.pwd", Role: "admin",
			}),
			wantData: marchallObj(t, map[string]string{"role": "invalid role"}),
		},
		{
			name: "duplicate email", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Hero", Email: "taken@test.cd", Password: "s3cr3t.pwd", PasswordConfirm: "s3cr3t.pwd",
			}),
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "default role is student", wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{
				Name: "Hero", Email: "hero@test.cd", Password: "s3cr3t.pwd", PasswordConfirm: "s3cr3t.pwd",
			}),
			extra: user.RoleStudent,
		},
		{
			name: "teacher registration", wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{
				Name: "Prof", Email: "prof@test.cd", Password: "s3cr3t.pwd", PasswordConfirm: "s3cr3t.pwd", Role: user.RoleTeacher,
			}),
			extra: user.RoleTeacher,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			// new user IDs and timestamps cannot be guessed
			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if usr.ID == "" {
					t.Error("failed! empty user ID")
				}
				if wantRole := tt.extra.(string); usr.Role != wantRole {
					t.Errorf("failed! role = %v; want %v", usr.Role, wantRole)
				}
				if !usr.IsActive {
					t.Error("failed! new user is inactive")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_login(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "s3cr3t.pwd", user.RoleStudent, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog@test.cd", "s3cr3t.pwd", user.RoleStudent, false) // 😂

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest, body: []byte("{}"),
			wantData: marchallObj(t, map[string]string{"email": reqMsg, "password": reqMsg}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "lol@test.cd", Password: "s3cr3t.pwd"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: student.Email, Password: "wrong.pwd"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "inactive user not allowed", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "ndog@test.cd", Password: "s3cr3t.pwd"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "logged in", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Email: "  HERO@test.cd ", Password: "s3cr3t.pwd"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				usr, err := usrRepo.GetUserByEmail(req.Context(), student.Email)
				if err != nil {
					t.Fatalf("GetUserByEmail(): %v", err)
				}
				if usr.LastLogin.IsZero() {
					t.Error("failed! lastLogin not set")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog@test.cd", "", user.RoleStudent, false)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   student.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Name:         student.Name,
		Email:        student.Email,
		Role:         student.Role,
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_tokenFailures(t *testing.T) {
	db.Reset()

	teacher := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", user.RoleTeacher, true)

	now := time.Now()
	expiredClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   teacher.ID,
			ExpiresAt: now.Add(-1 * time.Hour).Unix(),
			IssuedAt:  now.Add(-2 * time.Hour).Unix(),
		},
		OrigIssuedAt: now.Add(-2 * time.Hour).Unix(),
		Role:         teacher.Role,
	}
	expiredToken, err := echoapi.GenerateToken(expiredClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	// token signed with the wrong key
	badKeyToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, echoapi.GetUserClaims(teacher)).
		SignedString([]byte("not-the-secret-key"))
	if err != nil {
		t.Fatalf("SignedString(): %v", err)
	}

	tests := []httpTest{
		{name: "missing token", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "malformed token", token: "notatoken", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "malformed authorization token"}),
		},
		{
			name: "expired token", token: expiredToken, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "authorization token has expired"}),
		},
		{
			name: "invalid signature", token: badKeyToken, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid authorization token"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/users"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	db.Reset()

	t1 := time.Now().Add(-2 * time.Hour)
	t2 := time.Now().Add(-1 * time.Hour)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true, t1)
	teacher := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", user.RoleTeacher, true, t2)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teacher required", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied: teacher role required"}),
		},
		{
			name: "get all", token: getToken(t, teacher), wantCode: http.StatusOK,
			wantData: marchallList(t, student, teacher),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/users"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_queryRoles(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", user.RoleTeacher, true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teacher required", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied: teacher role required"}),
		},
		{
			name: "get roles", token: getToken(t, teacher), wantCode: http.StatusOK,
			wantData: marchallObj(t, user.Roles),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/users/roles"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_resetPassword(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "s3cr3t.pwd", user.RoleStudent, true)
	successData := marchallObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	pathRegex, err := regexp.Compile("/password-reset/.+/.+")
	if err != nil {
		t.Fatalf("regexp.Compile(): %v", err)
	}

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest, body: []byte("{}"),
			wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.cd"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: student.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: student.Name, Address: student.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if extra.emailSent {
					if len(emailsvc.SentMessages) != 1 {
						t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
					}
					msg := emailsvc.SentMessages[0]
					if msg.To[0] != extra.to {
						t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
					}
					if !strings.Contains(msg.TextContent, extra.to.Name) {
						t.Errorf("failed! text content does not contain recipient's name %q", extra.to.Name)
					}
					if !pathRegex.MatchString(msg.TextContent) {
						t.Errorf("failed! text content does not match pathRegex %v", pathRegex)
					}
					if !pathRegex.MatchString(msg.HTMLContent) {
						t.Errorf("failed! HTML content does not match pathRegex %v", pathRegex)
					}
				} else if len(emailsvc.SentMessages) > 0 {
					t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
				}
			}
		})
	}
}

func Test_userApi_confirmPasswordReset(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "old.s3cr3t", user.RoleStudent, true)
	validUID := user.EncodeUID(student)
	validToken := user.MakeToken(student)

	// generate an expired token
	dayLate := conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	user.NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := user.MakeToken(student)
	user.NowFunc = time.Now // reset

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest, body: []byte("{}"),
			wantData: marchallObj(t, map[string]string{
				"token": reqMsg, "uid": reqMsg, "password": reqMsg, "password_confirm": reqMsg,
			}),
		},
		{
			name: "invalid uid", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.ResetUserPassword{
				Token: validToken, UID: "lol!", Password: "new.s3cr3t", PasswordConfirm: "new.s3cr3t",
			}),
			wantData: marchallObj(t, map[string]string{"token": "invalid token"}),
		},
		{
			name: "tampered token", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.ResetUserPassword{
				Token: validToken + "lol", UID: validUID, Password: "new.s3cr3t", PasswordConfirm: "new.s3cr3t",
			}),
			wantData: marchallObj(t, map[string]string{"token": "invalid token"}),
		},
		{
			name: "expired token", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.ResetUserPassword{
				Token: expiredToken, UID: validUID, Password: "new.s3cr3t", PasswordConfirm: "new.s3cr3t",
			}),
			wantData: marchallObj(t, map[string]string{"token": "token expired"}),
		},
		{
			name: "password reset", wantCode: http.StatusOK,
			body: marchallObj(t, user.ResetUserPassword{
				Token: validToken, UID: validUID, Password: "new.s3cr3t", PasswordConfirm: "new.s3cr3t",
			}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset-confirm"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				usr, err := usrRepo.GetUserByID(req.Context(), student.ID)
				if err != nil {
					t.Fatalf("GetUserByID(): %v", err)
				}
				if err := usr.CheckPassword("new.s3cr3t"); err != nil {
					t.Error("failed! new password not set")
				}
			}
		})
	}
}
