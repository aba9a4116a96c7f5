package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-activity-go/index/activities"
	"github.com/toncenter/ton-activity-go/index/activity"
	"github.com/toncenter/ton-activity-go/index/models"
	"github.com/toncenter/ton-activity-go/index/transfer"
	"github.com/xssnick/tonutils-go/address"
)

type Server struct {
	Settings  Settings
	Assembler *activities.Assembler
	Submitter *transfer.Submitter
	Log       *logrus.Logger
}

type ActivitiesRequest struct {
	Network       models.Network `query:"network"`
	Wallet        string         `query:"wallet"`
	Slug          string         `query:"slug"`
	FromTimestamp *int64         `query:"from_timestamp"`
	ToTimestamp   *int64         `query:"to_timestamp"`
	Limit         int            `query:"limit"`
} // @name ActivitiesRequest

type ActivitiesResponse struct {
	Activities []activity.Activity `json:"activities" swaggertype:"array,object"`
} // @name ActivitiesResponse

type ActivityDetailsRequest struct {
	Network  models.Network  `json:"network" example:"mainnet"`
	Wallet   string          `json:"wallet"`
	Activity json.RawMessage `json:"activity" swaggertype:"object"`
} // @name ActivityDetailsRequest

type ActivityDetailsResponse struct {
	Activity activity.Activity `json:"activity" swaggertype:"object"`
} // @name ActivityDetailsResponse

type EmulateRequest struct {
	Network     models.Network               `json:"network" example:"mainnet"`
	Address     string                       `json:"address"`
	PublicKey   string                       `json:"public_key"`
	Version     string                       `json:"version" example:"v4r2"`
	SubwalletId uint32                       `json:"subwallet_id"`
	Messages    []transfer.TonConnectMessage `json:"messages"`
} // @name EmulateRequest

type SendBocRequest struct {
	Network models.Network `json:"network" example:"mainnet"`
	Address string         `json:"address"`
	Boc     string         `json:"boc" example:"te6ccgEBAQEAAgAAAA=="`
} // @name SendBocRequest

func networkOrDefault(n models.Network) models.Network {
	if n == "" {
		return models.Mainnet
	}
	return n
}

func parseAddress(addr string) (*address.Address, error) {
	if a, err := address.ParseAddr(addr); err == nil {
		return a, nil
	}
	a, err := address.ParseRawAddr(addr)
	if err != nil {
		return nil, models.IndexError{Code: 422, Message: fmt.Sprintf("invalid address %q", addr)}
	}
	return a, nil
}

// @summary Get wallet activities
// @description Returns one page of wallet activities, newest first. Activities the indexer has not finished are reloaded a few times before the page is returned.
// @id api_v1_get_activities
// @tags activities
// @Accept json
// @Produce json
// @success 200 {object} ActivitiesResponse
// @failure 400 {object} RequestError
// @param network query string false "Network." Enums(mainnet, testnet) default(mainnet)
// @param wallet query string true "Wallet address in any form."
// @param slug query string false "Only activities of this token."
// @param from_timestamp query int64 false "Only activities older than this timestamp in milliseconds."
// @param to_timestamp query int64 false "Only activities newer than this timestamp in milliseconds."
// @param limit query int32 false "Page size." minimum(1) maximum(1000) default(100)
// @router /api/v1/activities [get]
func (s *Server) GetActivities(c *fiber.Ctx) error {
	var req ActivitiesRequest
	if err := c.QueryParser(&req); err != nil {
		return models.IndexError{Code: 422, Message: err.Error()}
	}
	if req.Wallet == "" {
		return models.IndexError{Code: 422, Message: "wallet is required"}
	}
	list, err := s.Assembler.FetchActivitySlice(c.UserContext(), activities.SliceRequest{
		Network:       networkOrDefault(req.Network),
		Wallet:        req.Wallet,
		TokenSlug:     req.Slug,
		FromTimestamp: req.FromTimestamp,
		ToTimestamp:   req.ToTimestamp,
		Limit:         s.Settings.Request.Limit(req.Limit),
	})
	if err != nil {
		return err
	}
	if list == nil {
		list = []activity.Activity{}
	}
	return c.JSON(ActivitiesResponse{Activities: list})
}

// @summary Load activity fee details
// @description Fills the real fee of an activity from its trace and clears shouldLoadDetails.
// @id api_v1_post_activity_details
// @tags activities
// @Accept json
// @Produce json
// @success 200 {object} ActivityDetailsResponse
// @failure 400 {object} RequestError
// @param request body ActivityDetailsRequest true "Activity to fill."
// @router /api/v1/activityDetails [post]
func (s *Server) PostActivityDetails(c *fiber.Ctx) error {
	var req ActivityDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.IndexError{Code: 422, Message: err.Error()}
	}
	act, err := activity.UnmarshalActivity(req.Activity)
	if err != nil {
		return models.IndexError{Code: 422, Message: "invalid activity: " + err.Error()}
	}
	res, err := s.Assembler.FetchActivityDetails(c.UserContext(), networkOrDefault(req.Network), req.Wallet, act)
	if err != nil {
		return err
	}
	return c.JSON(ActivityDetailsResponse{Activity: res})
}

// @summary Emulate transfer
// @description Emulates a wallet transfer with the current seqno and returns the fee the wallet will actually pay.
// @id api_v1_post_emulate
// @tags transfer
// @Accept json
// @Produce json
// @success 200 {object} EmulationResult
// @failure 400 {object} RequestError
// @param request body EmulateRequest true "Transfer to emulate."
// @router /api/v1/emulate [post]
func (s *Server) PostEmulate(c *fiber.Ctx) error {
	var req EmulateRequest
	if err := c.BodyParser(&req); err != nil {
		return models.IndexError{Code: 422, Message: err.Error()}
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		return err
	}
	publicKey, err := hex.DecodeString(req.PublicKey)
	if err != nil {
		return models.IndexError{Code: 422, Message: "invalid public key: " + err.Error()}
	}
	version, err := transfer.ParseWalletVersion(req.Version)
	if err != nil {
		return models.IndexError{Code: 422, Message: err.Error()}
	}
	msgs, err := transfer.WalletMessages(req.Messages)
	if err != nil {
		return models.IndexError{Code: 422, Message: err.Error()}
	}

	res, err := s.Submitter.PreviewTransfer(c.UserContext(), transfer.TransferRequest{
		Network:     networkOrDefault(req.Network),
		Address:     addr,
		PublicKey:   publicKey,
		Version:     version,
		SubwalletId: req.SubwalletId,
		Messages:    msgs,
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// @summary Send signed message
// @description Broadcasts a signed external message and keeps resending it until the wallet seqno advances.
// @id api_v1_post_send_boc
// @tags transfer
// @Accept json
// @Produce json
// @success 200 {object} TransferResult
// @failure 400 {object} TransferError
// @param request body SendBocRequest true "Signed message."
// @router /api/v1/sendBoc [post]
func (s *Server) PostSendBoc(c *fiber.Ctx) error {
	var req SendBocRequest
	if err := c.BodyParser(&req); err != nil {
		return models.IndexError{Code: 422, Message: err.Error()}
	}
	if req.Boc == "" {
		return models.IndexError{Code: 422, Message: "boc is required"}
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		return err
	}
	res, err := s.Submitter.Broadcast(c.UserContext(), networkOrDefault(req.Network), addr.String(), req.Boc)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func HealthCheck(c *fiber.Ctx) error {
	return c.Status(200).SendString("OK")
}

func ExtractParam(ctx *fiber.Ctx, header string, query string) (string, bool) {
	result := ``
	found := false
	if val := ctx.GetReqHeaders()[header]; len(val) > 0 {
		result = val[0]
		found = true
	}
	if val, ok := ctx.Queries()[query]; len(query) > 0 && ok {
		result = val
		found = true
	}
	return result, found
}

func (s *Server) ErrorHandlerFunc(ctx *fiber.Ctx, err error) error {
	api_key, _ := ExtractParam(ctx, "X-Api-Key", "api_key")
	ip := ctx.IP()
	if ips := ctx.IPs(); len(ips) > 0 {
		ip = ips[0]
	}
	log := s.Log.WithFields(logrus.Fields{
		"path":    ctx.Path(),
		"ip":      ip,
		"api_key": api_key,
		"queries": ctx.Queries(),
		"body":    string(ctx.Body()),
	})

	switch e := err.(type) {
	case models.IndexError:
		if e.Code != 404 {
			log.WithField("code", e.Code).Warn(e.Message)
		}
		return ctx.Status(e.Code).JSON(models.RequestError{Message: e.Message, Code: e.Code})
	case *transfer.Error:
		log.WithField("status", e.Status).Warn(e.Message)
		return ctx.Status(fiber.StatusBadRequest).JSON(e)
	case *fiber.Error:
		return ctx.Status(e.Code).JSON(models.RequestError{Message: e.Message, Code: e.Code})
	default:
		log.WithError(err).Error("internal server error")
		resp := map[string]string{}
		resp["error"] = fmt.Sprintf("internal server error: %s", err.Error())
		return ctx.Status(fiber.StatusInternalServerError).JSON(resp)
	}
}

// NewApp builds the HTTP service around s.
func NewApp(s *Server) *fiber.App {
	config := fiber.Config{
		AppName:      "TON Activity API",
		Concurrency:  256 * 1024,
		Prefork:      s.Settings.Prefork,
		ErrorHandler: s.ErrorHandlerFunc,
	}
	app := fiber.New(config)

	app.Use("/api/v1/", func(c *fiber.Ctx) error {
		c.Accepts("application/json")
		start := time.Now()
		err := c.Next()
		stop := time.Now()
		c.Append("Server-timing", fmt.Sprintf("app;dur=%v", stop.Sub(start).String()))
		return err
	})
	if s.Settings.Debug {
		app.Use(pprof.New())
	}

	// healthcheck
	app.Get("/healthcheck", HealthCheck)

	// activities
	app.Get("/api/v1/activities", s.GetActivities)
	app.Post("/api/v1/activityDetails", s.PostActivityDetails)

	// transfers
	app.Post("/api/v1/emulate", s.PostEmulate)
	app.Post("/api/v1/sendBoc", s.PostSendBoc)

	// swagger
	var swagger_config = swagger.Config{
		Title:           "TON Activity (" + s.Settings.InstanceName + ") - Swagger UI",
		Layout:          "BaseLayout",
		DeepLinking:     true,
		TryItOutEnabled: true,
	}
	app.Get("/api/v1/*", swagger.New(swagger_config))
	return app
}
