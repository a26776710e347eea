package apiv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/pkg/apiv1"
)

// NotificationServiceHandler is implemented by the server.
type NotificationServiceHandler interface {
	Subscribe(context.Context, *connect.Request[apiv1.SubscribeRequest], *connect.ServerStream[apiv1.Notification]) error
	AddTopic(context.Context, *connect.Request[apiv1.AddTopicRequest]) (*connect.Response[apiv1.AddTopicResponse], error)
	AwaitTopic(context.Context, *connect.Request[apiv1.AwaitTopicRequest]) (*connect.Response[apiv1.AwaitTopicResponse], error)
}

// NewNotificationServiceHandler returns the service's path prefix and handler.
func NewNotificationServiceHandler(svc NotificationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + NotificationServiceName + "/", route(map[string]http.Handler{
		NotificationServiceSubscribeProcedure:  connect.NewServerStreamHandler(NotificationServiceSubscribeProcedure, svc.Subscribe, opts...),
		NotificationServiceAddTopicProcedure:   connect.NewUnaryHandler(NotificationServiceAddTopicProcedure, svc.AddTopic, opts...),
		NotificationServiceAwaitTopicProcedure: connect.NewUnaryHandler(NotificationServiceAwaitTopicProcedure, svc.AwaitTopic, opts...),
	})
}

// NotificationServiceClient calls NotificationService.
type NotificationServiceClient interface {
	Subscribe(context.Context, *connect.Request[apiv1.SubscribeRequest]) (*connect.ServerStreamForClient[apiv1.Notification], error)
	AddTopic(context.Context, *connect.Request[apiv1.AddTopicRequest]) (*connect.Response[apiv1.AddTopicResponse], error)
	AwaitTopic(context.Context, *connect.Request[apiv1.AwaitTopicRequest]) (*connect.Response[apiv1.AwaitTopicResponse], error)
}

type notificationServiceClient struct {
	subscribe  *connect.Client[apiv1.SubscribeRequest, apiv1.Notification]
	addTopic   *connect.Client[apiv1.AddTopicRequest, apiv1.AddTopicResponse]
	awaitTopic *connect.Client[apiv1.AwaitTopicRequest, apiv1.AwaitTopicResponse]
}

// NewNotificationServiceClient constructs a client for the server at baseURL.
func NewNotificationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) NotificationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &notificationServiceClient{
		subscribe:  connect.NewClient[apiv1.SubscribeRequest, apiv1.Notification](httpClient, baseURL+NotificationServiceSubscribeProcedure, opts...),
		addTopic:   connect.NewClient[apiv1.AddTopicRequest, apiv1.AddTopicResponse](httpClient, baseURL+NotificationServiceAddTopicProcedure, opts...),
		awaitTopic: connect.NewClient[apiv1.AwaitTopicRequest, apiv1.AwaitTopicResponse](httpClient, baseURL+NotificationServiceAwaitTopicProcedure, opts...),
	}
}

func (c *notificationServiceClient) Subscribe(ctx context.Context, req *connect.Request[apiv1.SubscribeRequest]) (*connect.ServerStreamForClient[apiv1.Notification], error) {
	return c.subscribe.CallServerStream(ctx, req)
}

func (c *notificationServiceClient) AddTopic(ctx context.Context, req *connect.Request[apiv1.AddTopicRequest]) (*connect.Response[apiv1.AddTopicResponse], error) {
	return c.addTopic.CallUnary(ctx, req)
}

func (c *notificationServiceClient) AwaitTopic(ctx context.Context, req *connect.Request[apiv1.AwaitTopicRequest]) (*connect.Response[apiv1.AwaitTopicResponse], error) {
	return c.awaitTopic.CallUnary(ctx, req)
}
