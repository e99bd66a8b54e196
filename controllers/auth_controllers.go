package controllers

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/chaiadda/backend/models"
	"github.com/chaiadda/backend/services"
	"github.com/chaiadda/backend/utils"
)

const otpValidity = 10 * time.Minute

type AuthController struct {
	DB     *gorm.DB
	Mailer services.Mailer
}

func NewAuthController(db *gorm.DB, mailer services.Mailer) *AuthController {
	return &AuthController{DB: db, Mailer: mailer}
}

// campusEmailSuffix is the domain students must sign up with.
func campusEmailSuffix() string {
	if s := os.Getenv("CAMPUS_EMAIL_SUFFIX"); s != "" {
		return s
	}
	return ".rishihood.edu.in"
}

// Signup creates (or refreshes) an unverified student account and mails a
// 6-digit OTP. Signing up again before verification overwrites the pending
// account.
func (ac *AuthController) Signup(c *gin.Context) {
	type request struct {
		Name         string `json:"name" binding:"required"`
		EnrollmentNo string `json:"enrollment_no" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=6"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !strings.HasSuffix(req.Email, campusEmailSuffix()) {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("please use a valid official email ID ending with "+campusEmailSuffix()))
		return
	}

	var existing models.User
	err := ac.DB.Where("email = ? OR enrollment_no = ?", req.Email, req.EnrollmentNo).First(&existing).Error
	if err == nil && existing.IsVerified {
		utils.RespondError(c, http.StatusBadRequest, errors.New("user already exists and is verified"))
		return
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	otp := utils.GenerateOTP()
	otpExpires := time.Now().Add(otpValidity)

	user := existing
	user.Name = req.Name
	user.EnrollmentNo = req.EnrollmentNo
	user.Email = req.Email
	user.Password = string(hashed)
	user.OTP = &otp
	user.OTPExpires = &otpExpires

	if err := ac.DB.Save(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := ac.Mailer.SendOTP(user.Email, otp); err != nil {
		utils.ErrorLogger.Printf("OTP mail to %s failed: %v", user.Email, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("email delivery failed"))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "OTP sent to your email. Please verify to complete signup.", gin.H{
		"email": user.Email,
	})
}

// VerifySignupOTP confirms the mailed code, marks the account verified and
// returns a logged-in session.
func (ac *AuthController) VerifySignupOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired OTP"))
		return
	}

	if user.OTP == nil || *user.OTP != req.OTP || user.OTPExpires == nil || time.Now().After(*user.OTPExpires) {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired OTP"))
		return
	}

	user.IsVerified = true
	user.OTP = nil
	user.OTPExpires = nil
	if err := ac.DB.Save(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ac.respondWithToken(c, user.ID, user.Name, user.Email, "user")
}

// Login authenticates a student. Unverified accounts get a fresh OTP
// instead of a token.
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid email or password"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid email or password"))
		return
	}

	if !user.IsVerified {
		otp := utils.GenerateOTP()
		otpExpires := time.Now().Add(otpValidity)
		user.OTP = &otp
		user.OTPExpires = &otpExpires
		if err := ac.DB.Save(&user).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if err := ac.Mailer.SendOTP(user.Email, otp); err != nil {
			utils.ErrorLogger.Printf("OTP mail to %s failed: %v", user.Email, err)
			utils.RespondError(c, http.StatusInternalServerError, errors.New("email delivery failed"))
			return
		}
		utils.RespondJSON(c, http.StatusForbidden, "Please verify your email. OTP sent.", gin.H{
			"email":                 user.Email,
			"requires_verification": true,
		})
		return
	}

	ac.respondWithToken(c, user.ID, user.Name, user.Email, "user")
}

// AdminLogin authenticates canteen staff against the admin table.
func (ac *AuthController) AdminLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var admin models.Admin
	if err := ac.DB.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid admin credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid admin credentials"))
		return
	}

	ac.respondWithToken(c, admin.ID, admin.Name, admin.Email, "admin")
}

func (ac *AuthController) respondWithToken(c *gin.Context, id uint, name, email, role string) {
	token, err := utils.GenerateToken(id, role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"id":    id,
		"name":  name,
		"email": email,
		"role":  role,
		"token": token,
	})
}
