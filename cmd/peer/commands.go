package peer

import (
	"fmt"
	"github.com/ValentinKolb/dDiam/cmd/util"
	"github.com/ValentinKolb/dDiam/diam/message"
	"github.com/spf13/cobra"
)

var (
	ccrFlags ccrParams

	// cerCmd represents the cer command
	cerCmd = &cobra.Command{
		Use:   "cer",
		Short: "Send a Capabilities-Exchange-Request",
		Args:  cobra.NoArgs,
		RunE:  runCER,
	}

	// dwrCmd represents the dwr command
	dwrCmd = &cobra.Command{
		Use:   "dwr",
		Short: "Send a Device-Watchdog-Request",
		Args:  cobra.NoArgs,
		RunE:  runDWR,
	}

	// ccrCmd represents the ccr command
	ccrCmd = &cobra.Command{
		Use:   "ccr",
		Short: "Send a Credit-Control-Request",
		Long:  "Send a Credit-Control-Request (RFC 4006). Without --session-id a new Session-Id is generated.",
		Args:  cobra.NoArgs,
		RunE:  runCCR,
	}
)

func init() {
	ccrCmd.Flags().StringVar(&ccrFlags.sessionID, "session-id", "", util.WrapString("Session-Id of the request (generated if empty)"))
	ccrCmd.Flags().StringVar(&ccrFlags.destinationRealm, "destination-realm", "localdomain", util.WrapString("Destination-Realm of the request"))
	ccrCmd.Flags().StringVar(&ccrFlags.serviceContext, "service-context", "32251@3gpp.org", util.WrapString("Service-Context-Id of the request"))
	ccrCmd.Flags().StringVar(&ccrFlags.requestType, "request-type", "event", util.WrapString("CC-Request-Type (initial, update, terminate, event)"))
	ccrCmd.Flags().Uint32Var(&ccrFlags.requestNumber, "request-number", 0, util.WrapString("CC-Request-Number of the request"))
	ccrCmd.Flags().StringVar(&ccrFlags.subscriptionID, "subscription-id", "", util.WrapString("Optional E.164 number sent as Subscription-Id"))
}

func runCER(_ *cobra.Command, _ []string) error {
	req, err := peerBuilder.CER()
	if err != nil {
		return err
	}
	return exchange(req)
}

func runDWR(_ *cobra.Command, _ []string) error {
	return exchange(peerBuilder.DWR())
}

func runCCR(_ *cobra.Command, _ []string) error {
	req, err := peerBuilder.CCR(ccrFlags)
	if err != nil {
		return err
	}
	return exchange(req)
}

// exchange sends req, prints the answer and fails on a non success Result-Code
func exchange(req *message.Message) error {
	ctx, cancel := requestContext()
	defer cancel()

	ans, err := peerClient.SendMessage(ctx, req)
	if err != nil {
		return err
	}

	fmt.Print(ans.Format(peerDict))

	code, ok := message.ResultCode(ans)
	if !ok {
		return fmt.Errorf("answer carries no Result-Code")
	}
	if !message.IsSuccess(code) {
		return fmt.Errorf("request failed with Result-Code %d", code)
	}
	fmt.Printf("Result-Code: %d\n", code)
	return nil
}
