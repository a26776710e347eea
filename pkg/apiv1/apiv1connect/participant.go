package apiv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/pkg/apiv1"
)

// ParticipantServiceHandler is implemented by the server.
type ParticipantServiceHandler interface {
	CreateParticipant(context.Context, *connect.Request[apiv1.CreateParticipantRequest]) (*connect.Response[apiv1.CreateParticipantResponse], error)
	ListParticipants(context.Context, *connect.Request[apiv1.ListParticipantsRequest]) (*connect.Response[apiv1.ListParticipantsResponse], error)
	UpdateParticipant(context.Context, *connect.Request[apiv1.UpdateParticipantRequest]) (*connect.Response[apiv1.UpdateParticipantResponse], error)
	DeleteParticipant(context.Context, *connect.Request[apiv1.DeleteParticipantRequest]) (*connect.Response[apiv1.DeleteParticipantResponse], error)
}

// NewParticipantServiceHandler returns the service's path prefix and handler.
func NewParticipantServiceHandler(svc ParticipantServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ParticipantServiceName + "/", route(map[string]http.Handler{
		ParticipantServiceCreateParticipantProcedure: connect.NewUnaryHandler(ParticipantServiceCreateParticipantProcedure, svc.CreateParticipant, opts...),
		ParticipantServiceListParticipantsProcedure:  connect.NewUnaryHandler(ParticipantServiceListParticipantsProcedure, svc.ListParticipants, opts...),
		ParticipantServiceUpdateParticipantProcedure: connect.NewUnaryHandler(ParticipantServiceUpdateParticipantProcedure, svc.UpdateParticipant, opts...),
		ParticipantServiceDeleteParticipantProcedure: connect.NewUnaryHandler(ParticipantServiceDeleteParticipantProcedure, svc.DeleteParticipant, opts...),
	})
}

// ParticipantServiceClient calls ParticipantService.
type ParticipantServiceClient interface {
	CreateParticipant(context.Context, *connect.Request[apiv1.CreateParticipantRequest]) (*connect.Response[apiv1.CreateParticipantResponse], error)
	ListParticipants(context.Context, *connect.Request[apiv1.ListParticipantsRequest]) (*connect.Response[apiv1.ListParticipantsResponse], error)
	UpdateParticipant(context.Context, *connect.Request[apiv1.UpdateParticipantRequest]) (*connect.Response[apiv1.UpdateParticipantResponse], error)
	DeleteParticipant(context.Context, *connect.Request[apiv1.DeleteParticipantRequest]) (*connect.Response[apiv1.DeleteParticipantResponse], error)
}

type participantServiceClient struct {
	createParticipant *connect.Client[apiv1.CreateParticipantRequest, apiv1.CreateParticipantResponse]
	listParticipants  *connect.Client[apiv1.ListParticipantsRequest, apiv1.ListParticipantsResponse]
	updateParticipant *connect.Client[apiv1.UpdateParticipantRequest, apiv1.UpdateParticipantResponse]
	deleteParticipant *connect.Client[apiv1.DeleteParticipantRequest, apiv1.DeleteParticipantResponse]
}

// NewParticipantServiceClient constructs a client for the server at baseURL.
func NewParticipantServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ParticipantServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &participantServiceClient{
		createParticipant: connect.NewClient[apiv1.CreateParticipantRequest, apiv1.CreateParticipantResponse](httpClient, baseURL+ParticipantServiceCreateParticipantProcedure, opts...),
		listParticipants:  connect.NewClient[apiv1.ListParticipantsRequest, apiv1.ListParticipantsResponse](httpClient, baseURL+ParticipantServiceListParticipantsProcedure, opts...),
		updateParticipant: connect.NewClient[apiv1.UpdateParticipantRequest, apiv1.UpdateParticipantResponse](httpClient, baseURL+ParticipantServiceUpdateParticipantProcedure, opts...),
		deleteParticipant: connect.NewClient[apiv1.DeleteParticipantRequest, apiv1.DeleteParticipantResponse](httpClient, baseURL+ParticipantServiceDeleteParticipantProcedure, opts...),
	}
}

func (c *participantServiceClient) CreateParticipant(ctx context.Context, req *connect.Request[apiv1.CreateParticipantRequest]) (*connect.Response[apiv1.CreateParticipantResponse], error) {
	return c.createParticipant.CallUnary(ctx, req)
}

func (c *participantServiceClient) ListParticipants(ctx context.Context, req *connect.Request[apiv1.ListParticipantsRequest]) (*connect.Response[apiv1.ListParticipantsResponse], error) {
	return c.listParticipants.CallUnary(ctx, req)
}

func (c *participantServiceClient) UpdateParticipant(ctx context.Context, req *connect.Request[apiv1.UpdateParticipantRequest]) (*connect.Response[apiv1.UpdateParticipantResponse], error) {
	return c.updateParticipant.CallUnary(ctx, req)
}

func (c *participantServiceClient) DeleteParticipant(ctx context.Context, req *connect.Request[apiv1.DeleteParticipantRequest]) (*connect.Response[apiv1.DeleteParticipantResponse], error) {
	return c.deleteParticipant.CallUnary(ctx, req)
}
