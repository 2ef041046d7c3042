package stage

// Prompt templates. Placeholders in [BRACKETS] are substituted before the
// oracle call; the response shape is pinned separately by the stage schema.

const typesPrompt = `You are a network protocol expert with deep understanding of [PROTOCOL].
Your task is to enumerate every client-to-server message type defined for the [PROTOCOL] protocol.

Please adhere to the following instructions:

1. **Enumerate Message Types:**
   - List every message type a client may send to a server, as defined in the official documentation, RFCs, or other recognized authoritative sources.
   - For each type provide:
     - "name": the exact message type name used by the protocol.
     - "code": the numeric or textual code of the type, if the protocol defines one (otherwise leave it empty).
     - "description": a brief description of the type's purpose.

2. **Authoritative and Accurate:**
   - Base the catalog strictly on official sources; avoid subjective assumptions.
   - Do not invent types that the protocol does not define.

3. **Final Output Structure:**
   - The final output must be a JSON object with the following structure:
   ` + "```json" + `
   {
     "protocol": "[PROTOCOL]",
     "client_to_server_messages": [
       {
         "name": "message type name",
         "code": "message type code, if any",
         "description": "description"
       }
       // ... additional message types
     ]
   }
   ` + "```" + `

Please produce the final JSON output accordingly, strictly following the above instructions.`

const structurePrompt = `You are a network protocol expert with deep understanding of [PROTOCOL]. Your task is to extract the detailed message structure for the client-to-server message type [TYPE] in the [PROTOCOL] protocol.

This message structure must include:
- A comprehensive list of all fields (including any common headers, body elements, and subfields) as defined in the official documentation, RFCs, or other recognized authoritative sources.
- For each field, include:
  - "name": The field name as specified in the documentation.
  - "fixed_byte_length": The fixed byte length of the field. If the field is variable, set this to null.
  - "data_type": The type of data (e.g., string, int, bytes, boolean, etc.).
  - "description": A brief description of the field and its purpose.
  - "details": Any additional information such as length, encoding, or constraints, if applicable.

In addition, include details about the message type itself:
- "code": The code of the message type ([CODE]; this value may be empty).
- "type_description": A description of the message type ([DESCRIPTION]).

Please adhere to the following instructions:

1. **Extract the Message Structure:**
   - Identify every field of the [TYPE] message as specified in the [PROTOCOL] documentation.
   - Include any common header or shared fields if applicable, but focus primarily on the fields unique to [TYPE].

2. **Provide Structured Reasoning:**
   - In the "reasoning" field, include a clear, step-by-step explanation of how you derived the structure.
   - Mention the official sources (documentation, RFCs, etc.) that were referenced.
   - Note any assumptions or ambiguities encountered and how you resolved them.

3. **Final Output Structure:**
   - The final output must be a JSON object with the following structure:
   ` + "```json" + `
   {
     "protocol": "[PROTOCOL]",
     "message_type": "[TYPE]",
     "code": "[CODE]",
     "type_description": "[DESCRIPTION]",
     "fields": [
       {
         "name": "field_name",
         "fixed_byte_length": null,
         "data_type": "data_type",
         "description": "description",
         "details": "additional details if any"
       }
       // ... additional field objects
     ],
     "reasoning": "A step-by-step explanation of how the structure was derived."
   }
   ` + "```" + `

Please produce the final JSON output accordingly, strictly following the above instructions.`

const sequencesPrompt = `You are a network protocol expert with deep understanding of [PROTOCOL].
Your task is to generate a series of message sequences for client-to-server communications in the [PROTOCOL] protocol.
The objective is to maximize code coverage by exercising as many lines, states, and branches in the protocol implementation as possible.

You are provided with a complete list of client-to-server message types:
[TYPES]

Please adhere to the following instructions:

1. **Generate Message Sequences:**
   - Create multiple message sequences that collectively include all client-to-server message types from the provided list.
   - Each sequence should vary the order of messages and include conditional transitions or error-handling cases to trigger different execution paths.
   - Design the sequences to explore edge cases and alternative branches in the protocol's state machine.
   - Message types may be repeated in a sequence if it helps to achieve greater coverage.
   - The number of sequences should be as many as possible.

2. **Provide a Coverage Rationale:**
   - In the "coverage" field for each sequence, include a descriptive summary of the expected line, state, and branch coverage achieved by that sequence.
   - In the "explanation" field, describe your step-by-step reasoning process for constructing these sequences.

3. **Final Output Structure:**
   - The final output must be a JSON object structured as follows:
   ` + "```json" + `
   {
     "protocol": "[PROTOCOL]",
     "sequences": [
       {
         "sequenceId": "A unique identifier for the sequence",
         "type_sequence": [
           "Type of message 1",
           "Type of message 2"
           // ...
         ],
         "coverage": {
           "line": "Description of line coverage achieved",
           "state": "Description of state coverage achieved",
           "branch": "Description of branch coverage achieved"
         }
       }
       // ... additional sequence objects
     ],
     "explanation": "How these sequences were constructed to maximize coverage."
   }
   ` + "```" + `

Please produce the final JSON output accordingly, strictly following the above instructions.`

const repeatedSequencesPrompt = `You are a network protocol expert with a deep understanding of [PROTOCOL].
Your task is to generate message sequences for client-to-server communications in the [PROTOCOL] protocol that deliberately revisit protocol states.
The primary objective is to maximize code coverage by exercising repeated state transitions, loops, and re-entrant paths in the protocol implementation.

You are provided with a complete list of client-to-server message types:
[TYPES]

Please adhere to the following instructions:

1. **Generate Looping Message Sequences:**
   - Produce sequences that repeat message types or groups of messages to drive the protocol back through states it has already visited.
   - Include conditional transitions and error-handling cases (invalid arguments, out-of-order messages) to explore the protocol's robustness under repetition.
   - If the protocol offers no meaningful repeated or looping behavior, return an empty "sequences" list instead of inventing one.

2. **Provide a Coverage Rationale:**
   - In the "explanation" field, detail why certain messages were repeated, how error cases were introduced, and how each sequence leads to different protocol states or paths.

3. **Final Output Structure:**
   - The final JSON object must conform to the following layout:
   ` + "```json" + `
   {
     "protocol": "[PROTOCOL]",
     "sequences": [
       {
         "sequenceId": "A unique identifier for the sequence",
         "type_sequence": [
           "Type of message 1",
           "Type of message 2"
           // ...
         ]
       }
       // ... additional sequence objects, or none at all
     ],
     "explanation": "The rationale behind loops, ordering, and any error cases."
   }
   ` + "```" + `

Please produce the final JSON output accordingly, strictly following the above structure.`

const testCasesPrompt = `You are a network protocol expert with deep understanding of [PROTOCOL]. Your task is to generate client-to-server message sequences for the [PROTOCOL] protocol based on the following inputs:

1. **Type Sequence:**
[SEQUENCE]

2. **Type Structure:**
[STRUCTURE]

3. **Number of Message Sequences to Generate:**
[NUMBER]
[SEED_CONTEXT]
Please adhere to the following instructions:

1. **Generate Messages for the Sequence:**
   - Generate exactly one message per entry of the type sequence, in the order specified.
   - Create [NUMBER] message sequences following the order specified in the type sequence.
   - For each message in a sequence, map the message type to its corresponding structure from the type structure and generate realistic, concrete values for each defined field.
   - For text-based protocols, write the message in plain ASCII text, using spaces, newlines, or CRLF according to the protocol specification if necessary.
   - For binary-based protocols, represent the message as a sequence of bytes in hex token format separated by spaces (e.g., "0x1a 0x0b 0x34 0x00") and set "is_binary" to true.
   - If "is_binary" is true, the entire message MUST consist of hex tokens separated by spaces.

2. **Ensure Maximum Coverage:**
   - Include variations (edge-case values, error-triggering values) that exercise different protocol states and transitions.
   - Account for both normal and exceptional conditions in the protocol.

3. **Authoritative and Accurate:**
   - Base the actual values strictly on the provided type structure.
   - Use official documentation and RFC details from the type structure to ensure correctness.

4. **Step-by-Step Reasoning:**
   - In the "explanation" field, include a clear explanation of how the sequences were generated and how actual values were determined.

5. **Final Output Structure:**
   - The final output must be a JSON object with the following structure:
   ` + "```json" + `
   {
     "protocol": "[PROTOCOL]",
     "sequences": [
       {
         "sequenceId": "A unique identifier for the sequence",
         "messages": [
           {"message": "HELO example.com", "is_binary": false},
           {"message": "0x00 0x1c 0x27 0x01", "is_binary": true}
         ],
         "explanation": "How the sequence was generated and why these values were selected."
       }
       // ... additional sequence objects, up to [NUMBER] sequences
     ]
   }
   ` + "```" + `

Please generate the message sequences for [PROTOCOL] based on the above requirements and constraints.`

const testCasesSeedContext = `
4. **Captured Seed Messages:**
The following messages were captured from live [PROTOCOL] traffic and parsed into individual protocol messages. Printable ASCII is literal; non-ASCII bytes appear as 0xHH hex tokens. Use them as authoritative examples of real field values and framing:
[SEED]
`

const seedParsePrompt = `You are a highly capable [PROTOCOL] protocol analysis and text parsing assistant.

The seed message below was loaded from a captured raw file. Printable ASCII characters remain as-is, while non-ASCII bytes have been converted into hex notation (e.g., 0x00, 0x1a, 0xff).

Your task is to split this content into individual protocol messages according to the [PROTOCOL] rules: use any delimiters, length fields, or headers the protocol defines to find message boundaries.

Seed Message Sequence:
[SEED_MESSAGE]

**Parsing Requirements:**
1. Include the exact substring of the seed content that corresponds to each parsed message, preserving any 0xHH hex notation for non-ASCII bytes.
2. Do not reorder, merge, or rewrite the content; only split it.
3. Return only the JSON object in the exact schema, no additional commentary.

` + "```json" + `
{
  "message_sequences": [
    {
      "message": "first protocol message"
    }
    // ... additional messages
  ]
}
` + "```"

const dictionarySeedSection = `Seed Input:
` + "```" + `
[SEED_INPUT]
` + "```" + `

`

const dictionaryBasePrompt = `You are a network protocol expert with deep understanding of [PROTOCOL] and advanced fuzzing techniques.
Your task is to generate a fuzzing dictionary for the [PROTOCOL] protocol by enhancing the existing dictionary data provided as the base dictionary.
You also have the list of message types used to compose protocol sequences.

[SEED_SECTION]Base Dictionary:
` + "```" + `
[BASE_DICTIONARY]
` + "```" + `

Message Types:
` + "```" + `
[TYPES]
` + "```" + `

Follow these strict guidelines:

1. **Leverage the Base Dictionary and Message Types:**
   - Begin with the provided base dictionary and build upon it.
   - When a Seed Input block is present, parse it for fixed tokens (magic values, delimiters) and mutable fields, and reuse its valid field values (user names, addresses) in new payloads.
   - Identify coverage gaps related to specific message types and generate new fuzzing payloads targeting those areas (headers, payloads, status codes specific to each type).

2. **Generate Fuzzing Dictionary Entries:**
   - Assign each entry a unique, descriptive "name" indicating the test case and the targeted message type (e.g., "Type-A Header Overflow").
   - The "data" field holds the crafted fuzzing input designed to trigger vulnerabilities in the context of the targeted message type.

3. **Output Size Limitation and Binary Data Handling:**
   - Each fuzzing payload MUST decode to at most [LIMIT] bytes; oversized keywords abort downstream fuzzers.
   - For text-based data, write plain ASCII (spaces, newlines, or CRLF as needed).
   - For binary data, represent each byte as a 0xHH hex token separated by spaces (e.g., "0x1a 0x0b 0x34 0x00"); each token is one byte.
   - Entries may mix text and binary data.

4. **Final Output Structure:**
   ` + "```json" + `
   {
     "protocol": "[PROTOCOL]",
     "fuzzing_dictionary": [
       {
         "name": "Descriptive fuzzing entry name",
         "data": "Fuzzing input string or 0xHH formatted binary sequence"
       }
       // ... additional fuzzing entries
     ]
   }
   ` + "```" + `

Please generate the final fuzzing dictionary entries strictly following the above instructions.`

const dictionaryScratchPrompt = `You are a network protocol expert with deep knowledge of the [PROTOCOL] protocol and advanced fuzzing techniques.
Your task is to generate a complete fuzzing dictionary for the [PROTOCOL] protocol from scratch, without relying on any pre-existing dictionary data.
You are provided with the list of message types used to compose protocol message sequences.

[SEED_SECTION]Message Types:
` + "```" + `
[TYPES]
` + "```" + `

Follow these strict guidelines:

1. **Generate Fuzzing Dictionary Entries from Scratch:**
   - Create multiple fuzzing payloads targeting different parts of the [PROTOCOL] protocol (headers, payloads, status codes).
   - When a Seed Input block is present, parse it for fixed tokens (magic values, delimiters) and mutable fields, and reuse its valid field values (user names, addresses) in new payloads.
   - Use the provided message type list to craft payloads specific to each message type.
   - Assign each entry a unique, descriptive "name" referencing the relevant message type.

2. **Coverage Considerations:**
   - Target diverse message types and include boundary values, special characters, and malformed structures.

3. **Output Size Limitation and Binary Data Handling:**
   - Each fuzzing payload MUST decode to at most [LIMIT] bytes; oversized keywords abort downstream fuzzers.
   - For text-based data, write plain ASCII (spaces, newlines, or CRLF as needed).
   - For binary data, represent each byte as a 0xHH hex token separated by spaces (e.g., "0x1a 0x0b 0x34 0x00"); each token is one byte.
   - Entries may mix text and binary data.

4. **Final Output Structure:**
   ` + "```json" + `
   {
     "protocol": "[PROTOCOL]",
     "fuzzing_dictionary": [
       {
         "name": "Descriptive fuzzing entry name",
         "data": "Fuzzing input string or 0xHH formatted binary sequence"
       }
       // ... additional fuzzing entries
     ]
   }
   ` + "```" + `

Please generate the final fuzzing dictionary entries strictly following the above instructions.`
