package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/votacontrol/attendance-api/internal/constants"
	"github.com/votacontrol/attendance-api/internal/database"
	"github.com/votacontrol/attendance-api/internal/dto"
	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/repository"
	"github.com/votacontrol/attendance-api/internal/services"
	"github.com/votacontrol/attendance-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// VoterHandlerTestSuite defines the test suite for VoterHandler
type VoterHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *VoterHandler
}

// SetupTest runs before each test
func (suite *VoterHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Leader{},
		&models.Voter{},
		&models.LeaderCheckIn{},
		&models.VoterCheckIn{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	voterRepo := repository.NewVoterRepository(suite.db)
	leaderRepo := repository.NewLeaderRepository(suite.db)
	suite.handler = NewVoterHandler(services.NewVoterService(voterRepo, leaderRepo))

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *VoterHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create an authenticated request context
func (suite *VoterHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func (suite *VoterHandlerTestSuite) createTestVoter(cedula, nombres, apellidos string) *models.Voter {
	voter := &models.Voter{
		CedulaVotante: cedula,
		Nombres:       nombres,
		Apellidos:     apellidos,
		Estado:        "Votó",
		Origen:        models.OrigenNuevo,
		CedulaNorm:    utils.NormalizeText(cedula),
		NombresNorm:   utils.NormalizeText(nombres),
		ApellidosNorm: utils.NormalizeText(apellidos),
	}
	suite.db.Create(voter)
	return voter
}

func (suite *VoterHandlerTestSuite) TestCreateVoter_Success() {
	body, err := json.Marshal(map[string]interface{}{
		"cedula_votante": "10000001",
		"nombres":        "José",
		"apellidos":      "Pérez",
		"donde_vota":     "Colegio San Juan",
		"mesa_votacion":  "3",
	})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("POST", "/api/voters", body, 1)
	suite.handler.CreateVoter(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Votante creado.", response["message"])
	assert.Equal(suite.T(), "success", response["tone"])

	voter := response["voter"].(map[string]interface{})
	assert.Equal(suite.T(), "10000001", voter["cedula_votante"])
	assert.Equal(suite.T(), "nuevo", voter["origen"])
}

func (suite *VoterHandlerTestSuite) TestCreateVoter_DuplicateCedula() {
	suite.createTestVoter("10000001", "Ana", "Rojas")

	body, err := json.Marshal(map[string]interface{}{
		"cedula_votante": "10000001",
		"nombres":        "Otra",
		"apellidos":      "Persona",
	})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("POST", "/api/voters", body, 1)
	suite.handler.CreateVoter(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "ALREADY_EXISTS", response["code"])
}

func (suite *VoterHandlerTestSuite) TestCreateVoter_ShortCedula() {
	body, err := json.Marshal(map[string]interface{}{
		"cedula_votante": "123",
		"nombres":        "Ana",
		"apellidos":      "Rojas",
	})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("POST", "/api/voters", body, 1)
	suite.handler.CreateVoter(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *VoterHandlerTestSuite) TestCreateVoter_LeaderZeroMeansIndependent() {
	body, err := json.Marshal(map[string]interface{}{
		"cedula_votante": "10000001",
		"nombres":        "Ana",
		"apellidos":      "Rojas",
		"leader_id":      0,
	})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("POST", "/api/voters", body, 1)
	suite.handler.CreateVoter(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var voter models.Voter
	suite.Require().NoError(suite.db.Where("cedula_votante = ?", "10000001").First(&voter).Error)
	assert.Nil(suite.T(), voter.LeaderID)
}

func (suite *VoterHandlerTestSuite) TestListVoters_SplitsPendingAndConfirmed() {
	suite.createTestVoter("10000001", "Ana", "Rojas")
	confirmed := suite.createTestVoter("10000002", "Luis", "Soto")

	c, w := suite.createAuthContext("POST", "/api/voters/2/toggle-checkin", nil, 1)
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	suite.handler.ToggleCheckIn(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	c, w = suite.createAuthContext("GET", "/api/voters", nil, 1)
	suite.handler.ListVoters(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.VoterListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Pending, 1)
	suite.Require().Len(response.Confirmed, 1)
	assert.Equal(suite.T(), "Ana", response.Pending[0].Nombres)
	assert.Equal(suite.T(), confirmed.CedulaVotante, response.Confirmed[0].CedulaVotante)
}

func (suite *VoterHandlerTestSuite) TestListVoters_TrimsFilterValues() {
	voter := suite.createTestVoter("10000001", "Ana", "Rojas")
	colegio := "Colegio A"
	voter.DondeVota = &colegio
	suite.Require().NoError(suite.db.Save(voter).Error)

	// Padded values still match the stored colegio.
	c, w := suite.createAuthContext("GET", "/api/voters?colegio=Colegio+A+", nil, 1)
	suite.handler.ListVoters(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	var response dto.VoterListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Pending, 1)
	assert.Equal(suite.T(), voter.CedulaVotante, response.Pending[0].CedulaVotante)

	// Whitespace-only values impose no constraint.
	c, w = suite.createAuthContext("GET", "/api/voters?colegio=+&q=+", nil, 1)
	suite.handler.ListVoters(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Pending, 1)

	// A padded search term matches after trimming.
	c, w = suite.createAuthContext("GET", "/api/voters?q=+ana+", nil, 1)
	suite.handler.ListVoters(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Pending, 1)
	assert.Equal(suite.T(), "Ana", response.Pending[0].Nombres)
}

func (suite *VoterHandlerTestSuite) TestToggleCheckIn_Messages() {
	voter := suite.createTestVoter("10000001", "Ana", "Rojas")

	c, w := suite.createAuthContext("POST", "/api/voters/1/toggle-checkin", nil, 1)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	suite.handler.ToggleCheckIn(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), true, response["checked_in"])
	assert.Equal(suite.T(), "Votante confirmado.", response["message"])
	assert.Equal(suite.T(), "success", response["tone"])

	c, w = suite.createAuthContext("POST", "/api/voters/1/toggle-checkin", nil, 1)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	suite.handler.ToggleCheckIn(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), false, response["checked_in"])
	assert.Equal(suite.T(), "Votante desmarcado.", response["message"])
	assert.Equal(suite.T(), "info", response["tone"])

	var got models.Voter
	suite.Require().NoError(suite.db.First(&got, voter.ID).Error)
	assert.False(suite.T(), got.CheckedIn)
}

func (suite *VoterHandlerTestSuite) TestToggleCheckIn_Unauthenticated() {
	suite.createTestVoter("10000001", "Ana", "Rojas")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/voters/1/toggle-checkin", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.ToggleCheckIn(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *VoterHandlerTestSuite) TestToggleCheckIn_NotFound() {
	c, w := suite.createAuthContext("POST", "/api/voters/999/toggle-checkin", nil, 1)
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	suite.handler.ToggleCheckIn(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *VoterHandlerTestSuite) TestDeleteVoter() {
	voter := suite.createTestVoter("10000001", "Ana", "Rojas")

	c, w := suite.createAuthContext("DELETE", "/api/voters/1", nil, 1)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	suite.handler.DeleteVoter(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Votante eliminado.", response["message"])
	assert.Equal(suite.T(), "info", response["tone"])

	err := suite.db.First(&models.Voter{}, voter.ID).Error
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

func (suite *VoterHandlerTestSuite) TestGetVoter_InvalidID() {
	c, w := suite.createAuthContext("GET", "/api/voters/abc", nil, 1)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	suite.handler.GetVoter(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func TestVoterHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(VoterHandlerTestSuite))
}
