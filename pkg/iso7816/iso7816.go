/*
Package iso7816 implements the client side of ISO/IEC 7816-4 interindustry commands: building and parsing Command APDUs, interpreting Response APDUs and their Status Words, and driving exchanges over the T=0 and T=1 transmission protocols.

# Fundamentals

The communication with a smart card is strictly synchronous:
 1. The Host sends a Command APDU (Header + Optional Body).
 2. The Card processes it and returns a Response APDU (Optional Body + Trailer SW1/SW2).

Commands and responses are immutable. Every constructor validates its input and the encoded form of a command always decodes back to the same command.

# Status Words

Every response ends with a 2-byte Status Word (SW).
  - 0x9000: Success (OK).
  - 0x61XX: Success, but response data is still available (XX bytes).
  - 0x6CXX: Error, wrong length expectation (XX is the correct length).
  - Other: Various warnings and errors, classified by StatusWord.State and StatusWord.Meaning.

# Usage Example: Selecting an Application

	client := iso7816.NewClient(card, iso7816.T0, logger)

	cmd, err := iso7816.SelectByAID(iso7816.MustClass(0x00), aid)
	if err != nil {
	    return err
	}

	// On T=0 the client issues GET RESPONSE (or corrects Le) as needed.
	res, err := client.Send(ctx, cmd)
	if err != nil {
	    return err
	}

	if res.Status.IsSuccess() {
	    fmt.Printf("FCI: %X\n", res.Response.Data())
	}

	// Every round trip, including GET RESPONSE, in a readable report.
	fmt.Println(res.Trace.Describe())
*/
package iso7816
